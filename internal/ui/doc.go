// Package ui implements the nixtrack console: a Bubble Tea program that
// renders the dashboard and the paginated order list from the state stores.
//
// The model never touches the stores from Update. Store calls run as
// tea.Cmds and report back through opDoneMsg; a periodic tick copies fresh
// snapshots into the model so store notifications and background refreshes
// show up without explicit wiring.
//
// Toasts implements state.Notifier and feeds the footer. Logging is
// redirected to a file while the alternate screen is active.
package ui
