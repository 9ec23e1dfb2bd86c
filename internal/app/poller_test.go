package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/nixtrack/internal/nixtrack"
)

type countingDashboard struct {
	mu    sync.Mutex
	users []nixtrack.UserProfile
	err   error
}

func (d *countingDashboard) Refresh(_ context.Context, user nixtrack.UserProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, user)
	return d.err
}

func (d *countingDashboard) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users)
}

type staticUser struct {
	user nixtrack.UserProfile
	ok   bool
}

func (s staticUser) User() (nixtrack.UserProfile, bool) { return s.user, s.ok }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStartPoller_RefreshesImmediatelyAndOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := &countingDashboard{}
	user := nixtrack.UserProfile{ID: 2, RoleID: nixtrack.RoleOperator, ClientID: 5}
	StartPoller(ctx, dash, staticUser{user: user, ok: true}, 10*time.Millisecond)

	waitFor(t, func() bool { return dash.calls() >= 3 })
	dash.mu.Lock()
	got := dash.users[0]
	dash.mu.Unlock()
	if got != user {
		t.Fatalf("refresh user = %+v, want %+v", got, user)
	}
}

func TestStartPoller_KeepsPollingAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := &countingDashboard{err: errors.New("boom")}
	StartPoller(ctx, dash, staticUser{ok: true}, 10*time.Millisecond)

	waitFor(t, func() bool { return dash.calls() >= 2 })
}

func TestRefresh_SkipsWhenSignedOut(t *testing.T) {
	dash := &countingDashboard{}
	refresh(context.Background(), dash, staticUser{ok: false})
	if dash.calls() != 0 {
		t.Fatalf("calls = %d, want 0", dash.calls())
	}
}

func TestStartPoller_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dash := &countingDashboard{}
	StartPoller(ctx, dash, staticUser{ok: true}, 5*time.Millisecond)
	waitFor(t, func() bool { return dash.calls() >= 1 })
	cancel()

	time.Sleep(20 * time.Millisecond)
	settled := dash.calls()
	time.Sleep(30 * time.Millisecond)
	if dash.calls() > settled+1 {
		t.Fatalf("poller kept running after cancel: %d -> %d", settled, dash.calls())
	}
}
