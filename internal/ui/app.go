package ui

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/prefs"
	"github.com/five82/nixtrack/internal/state"
)

// View is the active screen.
type View int

const (
	ViewDashboard View = iota
	ViewOrders
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Stores    *state.Stores
	Toasts    *Toasts
	PollTick  time.Duration // snapshot refresh; default one second
	ThemeName string
	PageSize  int
	PrefsPath string
	LogPath   string // log output is redirected here while the console runs
	Now       func() time.Time
}

// snapshot is everything the console renders, copied out of the stores.
type snapshot struct {
	auth      state.AuthState
	dashboard state.DashboardState
	orders    state.Collection[nixtrack.Order]
	details   state.OrderDetailsState
	catalog   state.CatalogState
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	stores    *state.Stores
	toasts    *Toasts
	prefsPath string
	pollTick  time.Duration
	pageSize  int
	now       func() time.Time

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	reason  textinput.Model

	view        View
	width       int
	height      int
	ready       bool
	showHelp    bool
	showDetails bool
	cancelling  int64 // order awaiting a cancel reason; zero when idle

	snap     snapshot
	dashRow  int
	orderRow int
	page     int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = prefs.Defaults().PageSize
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	reason := textinput.New()
	reason.Placeholder = "Motivo de cancelación"
	reason.CharLimit = 255

	return Model{
		ctx:       ctx,
		stores:    opts.Stores,
		toasts:    opts.Toasts,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		pageSize:  pageSize,
		now:       now,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		reason:    reason,
		view:      ViewDashboard,
		page:      1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		m.spinner.Tick,
		m.fetchSnapshot(),
		m.loadOrders(m.page),
		m.loadStatuses(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchSnapshot(), tickCmd(m.pollTick))

	case snapshotMsg:
		m.snap = snapshot(msg)
		m.clampRows()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			log.Printf("%s: %v", msg.label, msg.err)
		}
		return m, m.fetchSnapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.cancelling != 0 {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, PageSize: m.pageSize}); err != nil {
			log.Printf("save prefs: %v", err)
		}
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		if m.view == ViewDashboard {
			m.view = ViewOrders
		} else {
			m.view = ViewDashboard
		}
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		return m.closeDetails(), nil
	case key.Matches(msg, m.keys.Refresh):
		if m.view == ViewDashboard {
			return m, m.refreshDashboard()
		}
		return m, m.loadOrders(m.page)
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Top):
		m.setRow(0)
	case key.Matches(msg, m.keys.Bottom):
		m.setRow(len(m.rows()) - 1)
	case key.Matches(msg, m.keys.NextPage):
		if m.view == ViewOrders && m.page < m.totalPages() {
			m.page++
			m.orderRow = 0
			return m, m.loadOrders(m.page)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.view == ViewOrders && m.page > 1 {
			m.page--
			m.orderRow = 0
			return m, m.loadOrders(m.page)
		}
	case key.Matches(msg, m.keys.Details):
		if order, ok := m.selectedOrder(); ok {
			m.showDetails = true
			return m, m.loadDetails(order.ID)
		}
	case key.Matches(msg, m.keys.Activate):
		if order, ok := m.selectedOrder(); ok {
			return m, m.activate(order.ID)
		}
	case key.Matches(msg, m.keys.Finalize):
		if order, ok := m.selectedOrder(); ok {
			return m, m.finalize(order.ID)
		}
	case key.Matches(msg, m.keys.Cancel):
		if order, ok := m.selectedOrder(); ok {
			m.cancelling = order.ID
			m.reason.SetValue("")
			return m, m.reason.Focus()
		}
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.cancelling = 0
		m.reason.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if strings.TrimSpace(m.reason.Value()) == "" {
			if m.toasts != nil {
				m.toasts.Error("El motivo es requerido")
			}
			return m, nil
		}
		id, reason := m.cancelling, m.reason.Value()
		m.cancelling = 0
		m.reason.Blur()
		return m, m.cancel(id, reason)
	}
	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

func (m Model) closeDetails() Model {
	if m.showDetails && m.stores != nil {
		m.stores.OrderDetails.Clear()
	}
	m.showDetails = false
	return m
}

// rows returns the orders listed by the active view.
func (m Model) rows() []nixtrack.Order {
	if m.view == ViewDashboard {
		return m.snap.dashboard.ActiveOrders
	}
	return m.snap.orders.Items
}

func (m Model) selectedOrder() (nixtrack.Order, bool) {
	rows := m.rows()
	row := m.orderRow
	if m.view == ViewDashboard {
		row = m.dashRow
	}
	if row < 0 || row >= len(rows) {
		return nixtrack.Order{}, false
	}
	return rows[row], true
}

func (m *Model) moveRow(delta int) {
	if m.view == ViewDashboard {
		m.setRow(m.dashRow + delta)
		return
	}
	m.setRow(m.orderRow + delta)
}

func (m *Model) setRow(row int) {
	row = clamp(row, 0, len(m.rows())-1)
	if m.view == ViewDashboard {
		m.dashRow = row
	} else {
		m.orderRow = row
	}
}

func (m *Model) clampRows() {
	m.dashRow = clamp(m.dashRow, 0, len(m.snap.dashboard.ActiveOrders)-1)
	m.orderRow = clamp(m.orderRow, 0, len(m.snap.orders.Items)-1)
}

func (m Model) totalPages() int {
	if p := m.snap.orders.Pagination; p != nil && p.TotalPages > 0 {
		return p.TotalPages
	}
	return 1
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

// Run starts the Bubble Tea program and blocks until the operator quits or
// ctx is cancelled.
func Run(opts Options) error {
	if opts.LogPath != "" {
		f, err := tea.LogToFile(opts.LogPath, "nixtrack")
		if err != nil {
			log.Printf("log file: %v", err)
		} else {
			defer f.Close()
		}
	}
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(New(opts), programOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
