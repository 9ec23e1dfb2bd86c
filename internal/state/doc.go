// Package state holds the client-side caches behind the nixtrack console.
//
// # Overview
//
// Every server-backed entity gets a store: users, clients, vehicles, agents
// and orders share the generic Store, while order details, the dashboard, the
// location catalog, attachment galleries and the auth session each have a
// dedicated type. Stores call the API client, fold results into their cached
// state and hand out copies through Snapshot. The UI and the dashboard poller
// read snapshots; nothing outside this package mutates cached data.
//
// # Operation tracking
//
// Each store embeds a core that tracks in-flight operations by kind:
//
//	Store.List()    ─┐
//	Store.Delete()  ─┼─→ tracker.pending[op]++ ──→ Loading() == true
//	Store.Create()  ─┘          │
//	                            └─→ decremented when each call settles
//
// Loading stays true until every started operation has settled, so a fast
// delete never clears the flag of a slow list. Snapshots list the pending
// kinds so a view can tell which request it is waiting on.
//
// # Replace versus patch
//
// Operations that replace a slice of state wholesale (List, FetchOne, escort
// lists, dashboard halves, catalog levels, gallery loads, profile refresh) are
// fenced with a per-kind sequence number. A result is applied only when no
// later call of the same kind has already been applied:
//
//	List(page=1) ───────────────────────┐ seq 1, settles last: discarded
//	List(page=2) ──────────┐            │ seq 2, applied
//	                       ▼            ▼
//	                    items=p2    items=p2 (stale outcome recorded)
//
// Patch operations (create, update, delete, deactivate, uploads, order
// transitions) always apply because they edit the cached collection in
// place. A create prepends and bumps the pagination total, an update swaps
// the matching item and the selection, a delete filters and decrements.
//
// Clearing a scope (a new country in the catalog, Clear on order details)
// invalidates its fence so a response still in flight cannot repopulate it.
//
// # Errors and notifications
//
// A failed operation leaves cached data untouched and stores the API message,
// or a per-operation fallback, as the store error. Mutations report through
// the Notifier: the success or failure message for each entity comes from the
// Messages table it was built with. Order transitions are quiet: they do not
// touch Loading or the store error, only the notifier.
//
// Every settled operation is reported to the Recorder with its entity, kind,
// outcome and elapsed time. The metrics package provides a Prometheus
// implementation; the default discards observations.
//
// # Usage Example
//
//	client, _ := nixtrack.NewClient(cfg.APIURL, nixtrack.WithTokenSource(auth.Token))
//	stores := state.New(client, auth, state.Options{Notifier: state.LogNotifier{}})
//
//	if err := stores.Orders.List(ctx, nixtrack.OrderQuery{ListParams: nixtrack.ListParams{Page: 1, Limit: 15}}); err != nil {
//		log.Printf("orders: %v", err)
//	}
//	snap := stores.Orders.Snapshot()
//	render(snap.Items, snap.Pagination)
//
// # Testing Considerations
//
// Stores depend on narrow interfaces (EntityAPI, DetailsAPI, DashboardAPI,
// CatalogAPI, FilesAPI, AuthAPI) rather than the concrete client, so tests
// drive them with in-memory fakes and control the settle order of
// overlapping calls.
package state
