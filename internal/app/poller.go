package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/nixtrack/internal/nixtrack"
)

const defaultPollInterval = 5 * time.Minute

type dashboardRefresher interface {
	Refresh(ctx context.Context, user nixtrack.UserProfile) error
}

type currentUser interface {
	User() (nixtrack.UserProfile, bool)
}

// StartPoller launches a background goroutine that refreshes the dashboard
// at a fixed cadence, starting immediately. It returns immediately.
func StartPoller(ctx context.Context, dash dashboardRefresher, users currentUser, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(ctx, dash, users)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// refresh skips the cycle while signed out; the dashboard keeps its last data.
func refresh(ctx context.Context, dash dashboardRefresher, users currentUser) {
	user, ok := users.User()
	if !ok {
		return
	}
	if err := dash.Refresh(ctx, user); err != nil && ctx.Err() == nil {
		log.Printf("dashboard poll failed: %v", err)
	}
}
