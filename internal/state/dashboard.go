package state

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// DashboardAPI is the slice of the API client the dashboard consumes.
type DashboardAPI interface {
	ActiveOrders(ctx context.Context, clientID int64) ([]nixtrack.Order, error)
	CountOrders(ctx context.Context, q nixtrack.OrderQuery) (int, error)
}

// Stats are order totals per lifecycle bucket.
type Stats struct {
	TotalActive    int
	TotalPlanned   int
	TotalFinished  int
	TotalCancelled int
}

// DashboardState is a copy of the dashboard.
type DashboardState struct {
	ActiveOrders []nixtrack.Order
	Stats        Stats
	// LastUpdate is the local time the active orders last resolved. Zero
	// until the first successful fetch.
	LastUpdate time.Time
	Loading    bool
	Error      string
	Pending    []Op
}

// Dashboard holds the active orders sorted by urgency and the order totals.
type Dashboard struct {
	core
	api DashboardAPI

	active     []nixtrack.Order
	stats      Stats
	lastUpdate time.Time
}

// NewDashboard builds an empty dashboard.
func NewDashboard(api DashboardAPI, opts Options) *Dashboard {
	d := &Dashboard{api: api, active: []nixtrack.Order{}}
	d.setup("dashboard", opts)
	return d
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() DashboardState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DashboardState{
		ActiveOrders: slices.Clone(d.active),
		Stats:        d.stats,
		LastUpdate:   d.lastUpdate,
		Loading:      d.track.loading(),
		Error:        d.err,
		Pending:      d.track.ops(),
	}
}

// ScopeClientID returns the client filter for user: zero (all clients) for
// administrators, the user's own client otherwise.
func ScopeClientID(user nixtrack.UserProfile) int64 {
	if user.IsAdmin() {
		return 0
	}
	return user.ClientID
}

// StatusPriority ranks a status level: red 1, yellow 2, green 3, anything else 4.
func StatusPriority(level string) int {
	switch level {
	case nixtrack.LevelRed:
		return 1
	case nixtrack.LevelYellow:
		return 2
	case nixtrack.LevelGreen:
		return 3
	}
	return 4
}

// SortByPriority returns a copy of orders stable-sorted by StatusPriority.
func SortByPriority(orders []nixtrack.Order) []nixtrack.Order {
	out := slices.Clone(orders)
	if out == nil {
		out = []nixtrack.Order{}
	}
	slices.SortStableFunc(out, func(a, b nixtrack.Order) int {
		return StatusPriority(a.StatusLevel) - StatusPriority(b.StatusLevel)
	})
	return out
}

// Refresh fetches the active orders and the stats for user concurrently.
// Each half is applied independently; the first error is returned.
func (d *Dashboard) Refresh(ctx context.Context, user nixtrack.UserProfile) error {
	var g errgroup.Group
	g.Go(func() error { return d.FetchActiveOrders(ctx, user) })
	g.Go(func() error { return d.FetchStats(ctx, user) })
	return g.Wait()
}

// FetchActiveOrders replaces the active orders, sorted by urgency, and
// stamps LastUpdate.
func (d *Dashboard) FetchActiveOrders(ctx context.Context, user nixtrack.UserProfile) error {
	var orders []nixtrack.Order
	return d.run(OpActiveOrders, true, func() error {
		var err error
		orders, err = d.api.ActiveOrders(ctx, ScopeClientID(user))
		return err
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al cargar órdenes activas")
			return
		}
		d.active = SortByPriority(orders)
		d.lastUpdate = d.opts.Now()
	})
}

// FetchStats recomputes the order totals from per-status counts.
func (d *Dashboard) FetchStats(ctx context.Context, user nixtrack.UserProfile) error {
	var stats Stats
	return d.run(OpStats, true, func() error {
		var err error
		stats, err = d.countStats(ctx, ScopeClientID(user))
		return err
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al cargar estadísticas")
			return
		}
		d.stats = stats
	})
}

func (d *Dashboard) countStats(ctx context.Context, clientID int64) (Stats, error) {
	var stats Stats
	buckets := []struct {
		status int64
		dst    *int
	}{
		{nixtrack.StatusInTransit, &stats.TotalActive},
		{nixtrack.StatusPending, &stats.TotalPlanned},
		{nixtrack.StatusDelivered, &stats.TotalFinished},
		{nixtrack.StatusCancelled, &stats.TotalCancelled},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range buckets {
		g.Go(func() error {
			n, err := d.api.CountOrders(gctx, nixtrack.OrderQuery{ClientID: clientID, StatusID: b.status})
			if err != nil {
				return err
			}
			*b.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
