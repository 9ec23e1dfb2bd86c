package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// Below this width the order table drops secondary columns.
const layoutCompactWidth = 100

// column is one order table column. Widths are in cells.
type column struct {
	title string
	width int
	value func(nixtrack.Order) string
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	switch m.view {
	case ViewOrders:
		b.WriteString(m.renderOrders())
	default:
		b.WriteString(m.renderDashboard())
	}
	if m.showDetails {
		b.WriteString("\n")
		b.WriteString(m.renderDetails())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) loading() bool {
	return m.snap.dashboard.Loading || m.snap.orders.Loading || m.snap.details.Loading
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.Logo.Render("NIXTRACK")}

	for _, tab := range []struct {
		view  View
		label string
	}{{ViewDashboard, "Dashboard"}, {ViewOrders, "Orders"}} {
		if tab.view == m.view {
			parts = append(parts, styles.AccentText.Bold(true).Render("["+tab.label+"]"))
		} else {
			parts = append(parts, styles.MutedText.Render(" "+tab.label+" "))
		}
	}

	if u := m.snap.auth.User; u != nil {
		parts = append(parts, styles.Text.Render(u.Name), styles.MutedText.Render(roleLabel(u.RoleID)))
	}
	if last := m.snap.dashboard.LastUpdate; !last.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+humanizeAge(m.now().Sub(last))))
	}
	if m.loading() {
		parts = append(parts, m.spinner.View())
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderDashboard() string {
	styles := m.theme.Styles()
	dash := m.snap.dashboard
	var b strings.Builder

	stats := []struct {
		label string
		value int
		style func(...string) string
	}{
		{"En tránsito", dash.Stats.TotalActive, styles.InfoText.Render},
		{"Pendientes", dash.Stats.TotalPlanned, styles.WarningText.Render},
		{"Entregadas", dash.Stats.TotalFinished, styles.SuccessText.Render},
		{"Canceladas", dash.Stats.TotalCancelled, styles.DangerText.Render},
	}
	cards := make([]string, 0, len(stats))
	for _, s := range stats {
		cards = append(cards, styles.MutedText.Render(s.label+" ")+s.style(strconv.Itoa(s.value)))
	}
	b.WriteString(" " + strings.Join(cards, styles.FaintText.Render("  │  ")))
	b.WriteString("\n")
	if dash.Error != "" {
		b.WriteString(" " + styles.DangerText.Render(dash.Error) + "\n")
	}
	b.WriteString("\n")

	if len(dash.ActiveOrders) == 0 {
		b.WriteString(" " + styles.MutedText.Render("No hay órdenes activas"))
		return b.String()
	}
	b.WriteString(m.renderOrderTable(dash.ActiveOrders, m.dashRow))
	return b.String()
}

func (m Model) renderOrders() string {
	styles := m.theme.Styles()
	orders := m.snap.orders
	var b strings.Builder

	if orders.Error != "" {
		b.WriteString(" " + styles.DangerText.Render(orders.Error) + "\n")
	}
	if len(orders.Items) == 0 {
		b.WriteString(" " + styles.MutedText.Render("Sin órdenes"))
	} else {
		b.WriteString(m.renderOrderTable(orders.Items, m.orderRow))
	}
	b.WriteString("\n")
	total := len(orders.Items)
	if orders.Pagination != nil {
		total = orders.Pagination.Total
	}
	b.WriteString(" " + styles.FaintText.Render(fmt.Sprintf("Página %d de %d · %d órdenes", m.page, m.totalPages(), total)))
	return b.String()
}

func (m Model) orderColumns() []column {
	cols := []column{
		{"ORDEN", 12, orderLabel},
		{"RUTA", 34, routeLabel},
		{"ESTADO", 14, m.statusName},
	}
	if m.width >= layoutCompactWidth {
		cols = append(cols,
			column{"MANIFIESTO", 14, func(o nixtrack.Order) string { return o.ManifestNumber }},
			column{"CONDUCTOR", 20, func(o nixtrack.Order) string { return o.DriverName }},
			column{"SALIDA", 16, func(o nixtrack.Order) string { return shortTimestamp(o.DepartureAt) }},
		)
	}
	return cols
}

// visibleRows keeps selected in view within the rows left by the header,
// footer and optional checkpoint panel.
func (m Model) visibleRows(total, selected int) (int, int) {
	budget := m.height - 6
	if m.showDetails {
		budget -= detailPanelRows + 3
	}
	budget = max(budget, 3)
	if total <= budget {
		return 0, total
	}
	start := clamp(selected-budget+1, 0, total-budget)
	return start, start + budget
}

func (m Model) renderOrderTable(orders []nixtrack.Order, selected int) string {
	styles := m.theme.Styles()
	cols := m.orderColumns()
	var b strings.Builder

	header := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		header = append(header, padRight(c.title, c.width))
	}
	header = append(header, "NIVEL")
	b.WriteString(" " + styles.ColumnHeader.Render(strings.Join(header, " ")))

	start, end := m.visibleRows(len(orders), selected)
	for i := start; i < end; i++ {
		o := orders[i]
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, padRight(truncate(c.value(o), c.width), c.width))
		}
		line := strings.Join(cells, " ")
		if i == selected {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		b.WriteString("\n ")
		b.WriteString(line)
		b.WriteString(" ")
		b.WriteString(styles.LevelStyle(o.StatusLevel).Render(levelLabel(o.StatusLevel)))
	}
	return b.String()
}

const detailPanelRows = 6

func (m Model) renderDetails() string {
	styles := m.theme.Styles()
	details := m.snap.details
	var b strings.Builder

	title := "Checkpoints"
	if details.OrderID != 0 {
		title = fmt.Sprintf("Checkpoints · orden #%d", details.OrderID)
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))

	switch {
	case details.Error != "":
		b.WriteString("\n" + styles.DangerText.Render(details.Error))
	case details.Loading && len(details.Items) == 0:
		b.WriteString("\n" + styles.MutedText.Render("Cargando..."))
	case len(details.Items) == 0:
		b.WriteString("\n" + styles.MutedText.Render("Sin reportes"))
	}

	for i, d := range details.Items {
		if i == detailPanelRows {
			b.WriteString("\n" + styles.FaintText.Render(fmt.Sprintf("… %d más", len(details.Items)-detailPanelRows)))
			break
		}
		notes := ""
		if d.Notes != nil {
			notes = *d.Notes
		}
		line := fmt.Sprintf("%s  %s  %s  %s",
			padRight(shortTimestamp(d.ReportedAt), 16),
			padRight(truncate(d.LocationName, 28), 28),
			padRight(truncate(d.ReportedBy, 18), 18),
			truncate(notes, 40),
		)
		b.WriteString("\n" + styles.Text.Render(line))
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return styles.Panel.Width(width).Render(b.String())
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.cancelling != 0 {
		prompt := styles.WarningText.Render(fmt.Sprintf("Cancelar orden #%d: ", m.cancelling))
		return styles.Footer.Width(m.width).Render(prompt + m.reason.View())
	}
	if toast, ok := m.toasts.Current(); ok {
		style := styles.SuccessText
		if toast.Error {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Render(toast.Message))
	}
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

func (m Model) statusName(o nixtrack.Order) string {
	if o.Status != nil && o.Status.Name != "" {
		return o.Status.Name
	}
	for _, s := range m.snap.catalog.Statuses {
		if s.ID == o.StatusID {
			return s.Name
		}
	}
	if o.StatusID == 0 {
		return ""
	}
	return "#" + strconv.FormatInt(o.StatusID, 10)
}
