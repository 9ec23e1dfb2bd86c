package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/state"
)

type tickMsg time.Time

type snapshotMsg snapshot

// opDoneMsg reports a finished store operation. Store state and toasts
// already reflect the outcome; the error is only logged.
type opDoneMsg struct {
	label string
	err   error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func readSnapshot(stores *state.Stores) snapshot {
	if stores == nil {
		return snapshot{}
	}
	return snapshot{
		auth:      stores.Auth.Snapshot(),
		dashboard: stores.Dashboard.Snapshot(),
		orders:    stores.Orders.Snapshot(),
		details:   stores.OrderDetails.Snapshot(),
		catalog:   stores.Catalog.Snapshot(),
	}
}

func (m Model) fetchSnapshot() tea.Cmd {
	stores := m.stores
	return func() tea.Msg {
		return snapshotMsg(readSnapshot(stores))
	}
}

// run executes fn off the UI goroutine.
func (m Model) run(label string, fn func(ctx context.Context, stores *state.Stores) error) tea.Cmd {
	if m.stores == nil {
		return nil
	}
	ctx, stores := m.ctx, m.stores
	return func() tea.Msg {
		return opDoneMsg{label: label, err: fn(ctx, stores)}
	}
}

func (m Model) loadOrders(page int) tea.Cmd {
	limit := m.pageSize
	return m.run("load orders", func(ctx context.Context, s *state.Stores) error {
		q := nixtrack.OrderQuery{ListParams: nixtrack.ListParams{Page: page, Limit: limit}}
		if user, ok := s.Auth.User(); ok {
			q.ClientID = state.ScopeClientID(user)
		}
		return s.Orders.List(ctx, q)
	})
}

func (m Model) loadStatuses() tea.Cmd {
	return m.run("load statuses", func(ctx context.Context, s *state.Stores) error {
		return s.Catalog.LoadStatuses(ctx)
	})
}

func (m Model) refreshDashboard() tea.Cmd {
	return m.run("refresh dashboard", refreshDashboard)
}

func refreshDashboard(ctx context.Context, s *state.Stores) error {
	user, ok := s.Auth.User()
	if !ok {
		return nil
	}
	return s.Dashboard.Refresh(ctx, user)
}

func (m Model) loadDetails(orderID int64) tea.Cmd {
	return m.run("load checkpoints", func(ctx context.Context, s *state.Stores) error {
		return s.OrderDetails.List(ctx, orderID)
	})
}

// Order transitions refresh the dashboard on success so the active list
// drops delivered and cancelled orders.

func (m Model) activate(id int64) tea.Cmd {
	return m.run("activate order", func(ctx context.Context, s *state.Stores) error {
		if _, err := s.Orders.Activate(ctx, id); err != nil {
			return err
		}
		return refreshDashboard(ctx, s)
	})
}

func (m Model) finalize(id int64) tea.Cmd {
	arrival := nixtrack.FormatTimestamp(m.now())
	return m.run("finalize order", func(ctx context.Context, s *state.Stores) error {
		if _, err := s.Orders.Finalize(ctx, id, arrival); err != nil {
			return err
		}
		return refreshDashboard(ctx, s)
	})
}

func (m Model) cancel(id int64, reason string) tea.Cmd {
	return m.run("cancel order", func(ctx context.Context, s *state.Stores) error {
		if _, err := s.Orders.Cancel(ctx, id, reason); err != nil {
			return err
		}
		return refreshDashboard(ctx, s)
	})
}
