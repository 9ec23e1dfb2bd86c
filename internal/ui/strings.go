package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given display width.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if width <= 0 || w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func humanizeAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func roleLabel(roleID int64) string {
	switch roleID {
	case nixtrack.RoleAdmin:
		return "Administrador"
	case nixtrack.RoleSupervisor:
		return "Supervisor"
	case nixtrack.RoleOperator:
		return "Operador"
	case nixtrack.RoleClient:
		return "Cliente"
	default:
		return ""
	}
}

func levelLabel(level string) string {
	switch level {
	case "red":
		return "CRÍTICO"
	case "yellow":
		return "ALERTA"
	case "green":
		return "NORMAL"
	default:
		return "—"
	}
}

func orderLabel(o nixtrack.Order) string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return fmt.Sprintf("#%d", o.ID)
}

func cityLabel(city *nixtrack.City, code string) string {
	if city != nil && city.Name != "" {
		return city.Name
	}
	return code
}

func routeLabel(o nixtrack.Order) string {
	origin := cityLabel(o.OriginCity, o.OriginCityCode)
	dest := cityLabel(o.DestinationCity, o.DestinationCityCode)
	if origin == "" && dest == "" {
		return o.RouteDescription
	}
	return origin + " → " + dest
}

// shortTimestamp trims an API timestamp to minutes.
func shortTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 16 {
		return strings.Replace(value[:16], "T", " ", 1)
	}
	return value
}
