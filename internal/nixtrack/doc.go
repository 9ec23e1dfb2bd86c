// Package nixtrack provides an HTTP client for the escort-tracking REST API.
//
// # Overview
//
// This package wraps every endpoint the console consumes: the five entity
// collections (users, clients, vehicles, agents, orders), checkpoint reports,
// file attachments, catalogs, the dashboard and authentication. It is the
// only package that speaks HTTP; the state package consumes it through small
// interfaces.
//
// # Architecture
//
//   - client.go: APIClient construction, request building and envelope decoding
//   - resources.go: Generic Resource[T, In, Q] with List/Get/Create/Update/Delete,
//     order transitions and existence checks
//   - subresources.go: Checkpoint reports, multipart uploads, catalog, dashboard, auth
//   - query.go: Typed list filters that encode only the fields that are set
//   - types.go: Entities mirroring the API schema
//   - errors.go: APIError and sentinel errors
//
// # Client Usage
//
//	client, err := nixtrack.NewClient(cfg.APIURL,
//		nixtrack.WithTokenSource(auth.Token),
//		nixtrack.WithUnauthorizedHook(auth.Invalidate),
//	)
//	if err != nil {
//		log.Fatalf("init api client: %v", err)
//	}
//
//	page, err := client.Agents().List(ctx, nixtrack.AgentQuery{
//		ListParams: nixtrack.ListParams{Page: 1, Limit: 15, IsActive: nixtrack.FlagPtr(true)},
//	})
//
// # Envelope
//
// Every response is wrapped as {success, data, message}. Paginated listings
// carry {items, page, limit, total, totalPages} in data, which List normalizes
// into Page[T] with a Pagination block. When totalPages is missing it is
// derived as ceil(total/limit).
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Carry Accept: application/json and a User-Agent
//   - Carry a fresh X-Request-ID
//   - Carry Authorization: Bearer <token> when the token source returns one
//   - Have a 30-second timeout (WithTimeout overrides it)
//
// # Error Handling
//
//   - Transport failures and timeouts wrap ErrNetwork
//   - Non-2xx responses return *APIError carrying the envelope message
//   - 401 responses also satisfy errors.Is(err, ErrUnauthorized) and fire the
//     unauthorized hook, which the app uses to clear the persisted session
//   - A 2xx envelope with success=false satisfies errors.Is(err, ErrEnvelope)
//
// ErrorMessage(err, fallback) returns the text a user should see.
package nixtrack
