package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/five82/nixtrack/internal/config"
	"github.com/five82/nixtrack/internal/metrics"
	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/prefs"
	"github.com/five82/nixtrack/internal/session"
	"github.com/five82/nixtrack/internal/state"
	"github.com/five82/nixtrack/internal/ui"
)

// Options configure the nixtrack console.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/nixtrack/prefs.toml
	PollEvery  int    // dashboard refresh in seconds; zero uses default
}

// ErrSignedOut is returned when the console starts without a usable session.
var ErrSignedOut = errors.New("no active session, run `nixtrack login` first")

// runtime is the wired object graph shared by the console and the
// subcommands.
type runtime struct {
	cfg      config.Config
	sessions *session.Store
	client   *nixtrack.APIClient
	auth     *state.Auth
	stores   *state.Stores
	metrics  *metrics.Recorder
}

// open loads the persisted session and builds the client and stores.
// Unreadable or expired sessions start signed out.
func open(cfg config.Config, notifier state.Notifier, now time.Time) (*runtime, error) {
	sessions, err := session.New(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	snap, err := sessions.Load()
	if err != nil {
		log.Printf("ignoring unreadable session: %v", err)
		snap = session.Snapshot{}
	}
	if snap.Authenticated() && snap.Expired(now) {
		log.Printf("session token expired, signing out")
		if err := sessions.Clear(); err != nil {
			log.Printf("clear session: %v", err)
		}
		snap = session.Snapshot{}
	}

	rec := metrics.New()
	opts := state.Options{Notifier: notifier, Recorder: rec}

	var auth *state.Auth
	client, err := nixtrack.NewClient(cfg.APIURL,
		nixtrack.WithTimeout(cfg.RequestTimeout),
		nixtrack.WithTokenSource(func() string { return auth.Token() }),
		nixtrack.WithUnauthorizedHook(func() { auth.Invalidate() }),
	)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	auth = state.NewAuth(client, sessions, snap, opts)

	return &runtime{
		cfg:      cfg,
		sessions: sessions,
		client:   client,
		auth:     auth,
		stores:   state.New(client, auth, opts),
		metrics:  rec,
	}, nil
}

// Run boots the console until the context is cancelled or the operator quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	userPrefs := prefs.Load(opts.PrefsPath)

	toasts := ui.NewToasts(time.Now)
	rt, err := open(cfg, toasts, time.Now())
	if err != nil {
		return err
	}
	if !rt.auth.Snapshot().IsAuthenticated {
		return ErrSignedOut
	}
	if err := rt.auth.RefreshProfile(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrSignedOut, nixtrack.ErrorMessage(err, "profile refresh failed"))
	}

	if cfg.MetricsAddr != "" {
		rt.metrics.Serve(ctx, cfg.MetricsAddr)
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	StartPoller(ctx, rt.stores.Dashboard, rt.auth, interval)

	return ui.Run(ui.Options{
		Context:   ctx,
		Stores:    rt.stores,
		Toasts:    toasts,
		ThemeName: userPrefs.Theme,
		PageSize:  userPrefs.PageSize,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath(),
	})
}
