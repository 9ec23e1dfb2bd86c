// Package app is the composition root of the nixtrack console.
//
// # Overview
//
// Run loads configuration and the persisted session, builds the API client
// and every store, starts the dashboard poller and hands control to the
// Bubble Tea console. Login, Logout and Report back the CLI subcommands and
// share the same wiring. Logs only reads the console log file written while
// ui.Run owns the terminal.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          TOML + .env + NIXTRACK_*
//	       ├─────> session.Load()         token and profile, expiry check
//	       ├─────> nixtrack.NewClient()   token source and 401 hook -> Auth
//	       ├─────> state.New()            one store per entity
//	       ├─────> Auth.RefreshProfile()  fails fast on a revoked token
//	       ├─────> metrics.Serve()        only when metrics_addr is set
//	       ├─────> StartPoller()          dashboard every 5 minutes
//	       └─────> ui.Run()               blocks until quit
//
// The client and Auth reference each other: the client reads the bearer token
// from Auth and calls Auth.Invalidate on a 401, while Auth logs in through the
// client. open resolves this by declaring Auth before building the client.
//
// # Polling Behavior
//
// The poller refreshes the dashboard immediately and then on every tick
// (default 5 minutes, -poll overrides). Cycles are skipped while signed out.
// Failures are logged and the dashboard keeps its previous data.
//
// # Error Handling
//
// Fatal (returned from Run):
//   - invalid config file
//   - no session, or a session the server no longer accepts
//
// Recoverable (logged):
//   - unreadable or expired session file, which starts signed out
//   - dashboard poll failures
//   - metrics listener failures
//   - individual attachment upload failures in Report
package app
