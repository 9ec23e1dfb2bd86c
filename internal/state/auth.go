package state

import (
	"context"
	"log"

	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/session"
)

// AuthAPI is the authentication slice of the API client.
type AuthAPI interface {
	Login(ctx context.Context, req nixtrack.LoginRequest) (nixtrack.LoginResponse, error)
	Register(ctx context.Context, req nixtrack.RegisterRequest) (nixtrack.LoginResponse, error)
	Profile(ctx context.Context) (nixtrack.UserProfile, error)
}

// SessionWriter persists auth changes. *session.Store satisfies it.
type SessionWriter interface {
	Save(session.Snapshot) error
	Clear() error
}

// AuthState is a copy of the authentication state.
type AuthState struct {
	User            *nixtrack.UserProfile
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Auth holds the signed-in operator. It is seeded from the persisted session
// and writes every change back through the SessionWriter.
type Auth struct {
	core
	api      AuthAPI
	sessions SessionWriter

	token string
	user  *nixtrack.UserProfile
}

// NewAuth builds the auth store from the snapshot loaded at startup.
func NewAuth(api AuthAPI, sessions SessionWriter, seed session.Snapshot, opts Options) *Auth {
	a := &Auth{api: api, sessions: sessions, token: seed.Token}
	if seed.User != nil {
		u := *seed.User
		a.user = &u
	}
	a.setup("auth", opts)
	return a
}

// Snapshot returns a copy of the current state.
func (a *Auth) Snapshot() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st := AuthState{
		Token:           a.token,
		IsAuthenticated: a.token != "",
		Loading:         a.track.loading(),
		Error:           a.err,
	}
	if a.user != nil {
		u := *a.user
		st.User = &u
	}
	return st
}

// Token returns the bearer token, or "" when signed out.
func (a *Auth) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// User returns the signed-in profile.
func (a *Auth) User() (nixtrack.UserProfile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nixtrack.UserProfile{}, false
	}
	return *a.user, true
}

// Login signs in and persists the session.
func (a *Auth) Login(ctx context.Context, req nixtrack.LoginRequest) error {
	return a.authenticate(OpLogin, func() (nixtrack.LoginResponse, error) {
		return a.api.Login(ctx, req)
	}, "Error al iniciar sesión")
}

// Register creates an account, signs in and persists the session.
func (a *Auth) Register(ctx context.Context, req nixtrack.RegisterRequest) error {
	return a.authenticate(OpRegister, func() (nixtrack.LoginResponse, error) {
		return a.api.Register(ctx, req)
	}, "Error al registrar usuario")
}

func (a *Auth) authenticate(op Op, call func() (nixtrack.LoginResponse, error), fallback string) error {
	var resp nixtrack.LoginResponse
	return a.run(op, false, func() error {
		var err error
		resp, err = call()
		if err != nil {
			return err
		}
		user := resp.User
		if err := a.sessions.Save(session.Snapshot{Token: resp.Token, User: &user}); err != nil {
			log.Printf("persist session: %v", err)
		}
		return nil
	}, func(err error) {
		if err != nil {
			a.fail(err, fallback)
			return
		}
		user := resp.User
		a.token = resp.Token
		a.user = &user
	})
}

// RefreshProfile reloads the profile of the current token. A failure signs
// the operator out locally and removes the persisted session.
func (a *Auth) RefreshProfile(ctx context.Context) error {
	var profile nixtrack.UserProfile
	var token string
	return a.run(OpProfile, true, func() error {
		var err error
		profile, err = a.api.Profile(ctx)
		if err != nil {
			if clearErr := a.sessions.Clear(); clearErr != nil {
				log.Printf("clear session: %v", clearErr)
			}
			return err
		}
		token = a.Token()
		if err := a.sessions.Save(session.Snapshot{Token: token, User: &profile}); err != nil {
			log.Printf("persist session: %v", err)
		}
		return nil
	}, func(err error) {
		if err != nil {
			a.fail(err, "Error al cargar perfil")
			a.token = ""
			a.user = nil
			return
		}
		a.user = &profile
	})
}

// Logout clears the local and persisted session. It never fails.
func (a *Auth) Logout() {
	a.Invalidate()
	a.observe(OpLogout, OutcomeSuccess, 0)
}

// Invalidate drops the session after the API rejected the token.
func (a *Auth) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.user = nil
	a.mu.Unlock()

	if err := a.sessions.Clear(); err != nil {
		log.Printf("clear session: %v", err)
	}
}
