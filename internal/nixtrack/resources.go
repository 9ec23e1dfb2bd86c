package nixtrack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Resource exposes the five canonical REST operations of one collection.
// T is the entity, In its create/update payload, Q its list filter.
type Resource[T, In any, Q Query] struct {
	c         *APIClient
	path      string
	normalize func(T) T
}

// Path returns the collection path, e.g. "/clients".
func (r Resource[T, In, Q]) Path() string { return r.path }

// List fetches one page of the collection.
func (r Resource[T, In, Q]) List(ctx context.Context, q Q) (Page[T], error) {
	if r.c == nil {
		return Page[T]{}, fmt.Errorf("client is nil")
	}
	var raw rawPage[T]
	if err := r.c.get(ctx, r.path, q.Values(), &raw); err != nil {
		return Page[T]{}, err
	}
	page := raw.page()
	if r.normalize != nil {
		for i := range page.Items {
			page.Items[i] = r.normalize(page.Items[i])
		}
	}
	return page, nil
}

// Get fetches one entity by id.
func (r Resource[T, In, Q]) Get(ctx context.Context, id int64) (T, error) {
	return r.one(ctx, http.MethodGet, r.itemPath(id), nil)
}

// Create posts a new entity and returns the server's representation.
func (r Resource[T, In, Q]) Create(ctx context.Context, in In) (T, error) {
	return r.one(ctx, http.MethodPost, r.path, in)
}

// Update sends a partial update and returns the server's representation.
func (r Resource[T, In, Q]) Update(ctx context.Context, id int64, in In) (T, error) {
	return r.one(ctx, http.MethodPut, r.itemPath(id), in)
}

// Delete removes an entity. The API soft-deletes.
func (r Resource[T, In, Q]) Delete(ctx context.Context, id int64) error {
	if r.c == nil {
		return fmt.Errorf("client is nil")
	}
	return r.c.doJSON(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

func (r Resource[T, In, Q]) one(ctx context.Context, method, path string, body any) (T, error) {
	var out T
	if r.c == nil {
		return out, fmt.Errorf("client is nil")
	}
	if err := r.c.doJSON(ctx, method, path, nil, body, &out); err != nil {
		return out, err
	}
	if r.normalize != nil {
		out = r.normalize(out)
	}
	return out, nil
}

func (r Resource[T, In, Q]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// rawPage is the paginated payload as the API sends it.
type rawPage[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func (r rawPage[T]) page() Page[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	totalPages := r.TotalPages
	if totalPages == 0 && r.Limit > 0 {
		totalPages = (r.Total + r.Limit - 1) / r.Limit
	}
	return Page[T]{
		Items: items,
		Pagination: Pagination{
			CurrentPage: r.Page,
			PerPage:     r.Limit,
			Total:       r.Total,
			TotalPages:  totalPages,
		},
	}
}

// Users returns the /users resource.
func (c *APIClient) Users() Resource[User, UserInput, UserQuery] {
	return Resource[User, UserInput, UserQuery]{c: c, path: "/users", normalize: normalizeUser}
}

// Clients returns the /clients resource.
func (c *APIClient) Clients() Resource[Client, ClientInput, ClientQuery] {
	return Resource[Client, ClientInput, ClientQuery]{c: c, path: "/clients"}
}

// Vehicles returns the /vehicles resource.
func (c *APIClient) Vehicles() Resource[Vehicle, VehicleInput, VehicleQuery] {
	return Resource[Vehicle, VehicleInput, VehicleQuery]{c: c, path: "/vehicles"}
}

// Agents returns the /agents resource.
func (c *APIClient) Agents() Resource[Agent, AgentInput, AgentQuery] {
	return Resource[Agent, AgentInput, AgentQuery]{c: c, path: "/agents"}
}

// Orders returns the /orders resource.
func (c *APIClient) Orders() Resource[Order, OrderInput, OrderQuery] {
	return Resource[Order, OrderInput, OrderQuery]{c: c, path: "/orders"}
}

// DeactivateUser flags a user inactive without deleting it.
func (c *APIClient) DeactivateUser(ctx context.Context, id int64) (User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPatch, "/users/"+strconv.FormatInt(id, 10)+"/deactivate", nil, nil, &out); err != nil {
		return User{}, err
	}
	return normalizeUser(out), nil
}

// FinalizeOrder marks an order delivered at arrivalAt.
func (c *APIClient) FinalizeOrder(ctx context.Context, id int64, arrivalAt string) (Order, error) {
	body := map[string]string{"arrival_at": arrivalAt}
	return c.orderTransition(ctx, id, "finalize", body)
}

// ErrReasonRequired is returned when an order is cancelled without a reason.
var ErrReasonRequired = errors.New("cancellation reason required")

// CancelOrder cancels an order. reason must be non-empty.
func (c *APIClient) CancelOrder(ctx context.Context, id int64, reason string) (Order, error) {
	if strings.TrimSpace(reason) == "" {
		return Order{}, ErrReasonRequired
	}
	body := map[string]string{"cancellation_reason": reason}
	return c.orderTransition(ctx, id, "cancel", body)
}

// ActivateOrder moves a pending order into transit.
func (c *APIClient) ActivateOrder(ctx context.Context, id int64) (Order, error) {
	return c.orderTransition(ctx, id, "activate", nil)
}

func (c *APIClient) orderTransition(ctx context.Context, id int64, action string, body any) (Order, error) {
	if c == nil {
		return Order{}, fmt.Errorf("client is nil")
	}
	var out Order
	path := "/orders/" + strconv.FormatInt(id, 10) + "/" + action
	if err := c.doJSON(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

// EscortVehicles lists every active escort vehicle, for escort selectors.
func (c *APIClient) EscortVehicles(ctx context.Context) ([]Vehicle, error) {
	page, err := c.Vehicles().List(ctx, VehicleQuery{
		ListParams:      ListParams{Limit: 1000, IsActive: FlagPtr(true)},
		IsEscortVehicle: FlagPtr(true),
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// VehicleHistory returns the service history of a vehicle.
func (c *APIClient) VehicleHistory(ctx context.Context, id int64) ([]VehicleHistoryEntry, error) {
	var out []VehicleHistoryEntry
	if err := c.get(ctx, "/vehicles/"+strconv.FormatInt(id, 10)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountOrders returns the server-side total of orders matching q.
func (c *APIClient) CountOrders(ctx context.Context, q OrderQuery) (int, error) {
	q.Page = 1
	q.Limit = 1
	page, err := c.Orders().List(ctx, q)
	if err != nil {
		return 0, err
	}
	return page.Pagination.Total, nil
}

// exists calls GET /{resource}/check-{field}/{value}?exclude_id=.
func (c *APIClient) exists(ctx context.Context, resource, check, value string, excludeID int64) (bool, error) {
	if strings.TrimSpace(value) == "" {
		return false, fmt.Errorf("%s value required", check)
	}
	var query url.Values
	if excludeID > 0 {
		query = url.Values{"exclude_id": {strconv.FormatInt(excludeID, 10)}}
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	path := "/" + resource + "/check-" + check + "/" + url.PathEscape(value)
	if err := c.get(ctx, path, query, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// CheckTaxID reports whether another client already uses taxID.
func (c *APIClient) CheckTaxID(ctx context.Context, taxID string, excludeID int64) (bool, error) {
	return c.exists(ctx, "clients", "tax-id", taxID, excludeID)
}

// CheckLicensePlate reports whether another vehicle already uses plate.
func (c *APIClient) CheckLicensePlate(ctx context.Context, plate string, excludeID int64) (bool, error) {
	return c.exists(ctx, "vehicles", "license-plate", plate, excludeID)
}

// CheckAgentDocument reports whether another agent already uses documentID.
func (c *APIClient) CheckAgentDocument(ctx context.Context, documentID string, excludeID int64) (bool, error) {
	return c.exists(ctx, "agents", "document", documentID, excludeID)
}

// CheckOrderNumber reports whether another order already uses number.
func (c *APIClient) CheckOrderNumber(ctx context.Context, number string, excludeID int64) (bool, error) {
	return c.exists(ctx, "orders", "order-number", number, excludeID)
}
