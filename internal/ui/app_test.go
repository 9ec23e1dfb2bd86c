package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/prefs"
	"github.com/five82/nixtrack/internal/state"
)

var testNow = time.Date(2026, 4, 2, 15, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (Model, *Toasts) {
	t.Helper()
	toasts := NewToasts(func() time.Time { return testNow })
	m := New(Options{
		Toasts:    toasts,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Now:       func() time.Time { return testNow },
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, toasts
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func seeded() snapshotMsg {
	return snapshotMsg{
		auth: state.AuthState{
			IsAuthenticated: true,
			User:            &nixtrack.UserProfile{ID: 1, Name: "Ana Operadora", RoleID: nixtrack.RoleOperator},
		},
		dashboard: state.DashboardState{
			ActiveOrders: []nixtrack.Order{
				{ID: 11, OrderNumber: "OT-011", StatusLevel: "red", StatusID: nixtrack.StatusInTransit},
				{ID: 12, OrderNumber: "OT-012", StatusLevel: "yellow", StatusID: nixtrack.StatusInTransit},
				{ID: 13, OrderNumber: "OT-013", StatusLevel: "green", StatusID: nixtrack.StatusInTransit},
			},
			Stats:      state.Stats{TotalActive: 3, TotalPlanned: 2, TotalFinished: 40, TotalCancelled: 1},
			LastUpdate: testNow.Add(-5 * time.Minute),
		},
		orders: state.Collection[nixtrack.Order]{
			Items: []nixtrack.Order{
				{ID: 21, OrderNumber: "OT-021", StatusID: nixtrack.StatusPending},
				{ID: 22, OrderNumber: "OT-022", StatusID: nixtrack.StatusDelivered},
			},
			Pagination: &nixtrack.Pagination{CurrentPage: 1, PerPage: 2, Total: 4, TotalPages: 2},
		},
		catalog: state.CatalogState{
			Statuses: []nixtrack.TrackStatus{{ID: nixtrack.StatusPending, Name: "Pendiente"}},
		},
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() = %q", got)
	}
}

func TestDashboardRendersStatsAndOrders(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, seeded())

	out := m.View()
	for _, want := range []string{"NIXTRACK", "Ana Operadora", "Operador", "5m ago", "OT-011", "OT-013", "Entregadas", "40", "CRÍTICO"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard view missing %q", want)
		}
	}
}

func TestTabSwitchesToOrders(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, seeded())
	m = update(t, m, keyPress("tab"))

	if m.view != ViewOrders {
		t.Fatalf("view = %v, want orders", m.view)
	}
	out := m.View()
	for _, want := range []string{"OT-021", "Pendiente", "Página 1 de 2", "4 órdenes"} {
		if !strings.Contains(out, want) {
			t.Errorf("orders view missing %q", want)
		}
	}
}

func TestRowNavigationClamps(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, seeded())

	m = update(t, m, keyPress("j"))
	m = update(t, m, keyPress("j"))
	m = update(t, m, keyPress("j"))
	if m.dashRow != 2 {
		t.Fatalf("dashRow = %d, want 2", m.dashRow)
	}
	m = update(t, m, keyPress("g"))
	if m.dashRow != 0 {
		t.Fatalf("dashRow after top = %d", m.dashRow)
	}
	m = update(t, m, keyPress("G"))
	order, ok := m.selectedOrder()
	if !ok || order.ID != 13 {
		t.Fatalf("selectedOrder = %+v, %v", order, ok)
	}

	shrunk := seeded()
	shrunk.dashboard.ActiveOrders = shrunk.dashboard.ActiveOrders[:1]
	m = update(t, m, shrunk)
	if m.dashRow != 0 {
		t.Fatalf("dashRow after shrink = %d", m.dashRow)
	}
}

func TestNextPageStopsAtLastPage(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, seeded())
	m = update(t, m, keyPress("tab"))

	m = update(t, m, keyPress("]"))
	if m.page != 2 {
		t.Fatalf("page = %d, want 2", m.page)
	}
	m = update(t, m, keyPress("]"))
	if m.page != 2 {
		t.Fatalf("page past the end = %d", m.page)
	}
	m = update(t, m, keyPress("["))
	m = update(t, m, keyPress("["))
	if m.page != 1 {
		t.Fatalf("page = %d, want 1", m.page)
	}
}

func TestCancelPromptRequiresReason(t *testing.T) {
	m, toasts := newTestModel(t)
	m = update(t, m, seeded())
	m = update(t, m, keyPress("j"))

	m = update(t, m, keyPress("C"))
	if m.cancelling != 12 {
		t.Fatalf("cancelling = %d, want 12", m.cancelling)
	}
	if !strings.Contains(m.View(), "Cancelar orden #12") {
		t.Error("footer should show the cancel prompt")
	}

	m = update(t, m, keyPress("enter"))
	if m.cancelling != 12 {
		t.Fatal("empty reason must keep the prompt open")
	}
	toast, ok := toasts.Current()
	if !ok || !toast.Error || toast.Message != "El motivo es requerido" {
		t.Fatalf("toast = %+v, %v", toast, ok)
	}

	m = update(t, m, keyPress("x"))
	if m.view != ViewDashboard {
		t.Fatal("typing in the prompt must not trigger bindings")
	}
	m = update(t, m, keyPress("enter"))
	if m.cancelling != 0 {
		t.Fatalf("prompt should close after confirming, cancelling = %d", m.cancelling)
	}
}

func TestCancelPromptEscape(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, seeded())
	m = update(t, m, keyPress("C"))
	m = update(t, m, keyPress("esc"))
	if m.cancelling != 0 {
		t.Fatalf("cancelling = %d after esc", m.cancelling)
	}
}

func TestHelpOverlayToggles(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("?"))
	if !m.showHelp {
		t.Fatal("help should open")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay missing title")
	}
	m = update(t, m, keyPress("j"))
	if m.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestCycleThemePersists(t *testing.T) {
	m, _ := newTestModel(t)
	start := m.theme.Name
	m = update(t, m, keyPress("T"))
	if m.theme.Name == start {
		t.Fatal("theme did not change")
	}
	if got := prefs.Load(m.prefsPath).Theme; got != m.theme.Name {
		t.Fatalf("saved theme = %q, want %q", got, m.theme.Name)
	}
}

func TestDetailsPanel(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, seeded())
	m = update(t, m, keyPress("enter"))
	if !m.showDetails {
		t.Fatal("enter should open the checkpoint panel")
	}

	msg := seeded()
	notes := "Sin novedad"
	msg.details = state.OrderDetailsState{
		OrderID: 11,
		Items:   []nixtrack.OrderDetail{{ID: 1, ReportedAt: "2026-04-02 14:30:00", LocationName: "Peaje Siberia", Notes: &notes}},
	}
	m = update(t, m, msg)
	out := m.View()
	for _, want := range []string{"orden #11", "Peaje Siberia", "Sin novedad"} {
		if !strings.Contains(out, want) {
			t.Errorf("details panel missing %q", want)
		}
	}

	m = update(t, m, keyPress("esc"))
	if m.showDetails {
		t.Fatal("esc should close the panel")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyPress("e"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit command should produce tea.QuitMsg")
	}
}
