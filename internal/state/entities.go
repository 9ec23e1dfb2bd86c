package state

import (
	"context"
	"slices"
	"strings"

	"github.com/five82/nixtrack/internal/nixtrack"
)

type (
	UserStore    = Store[nixtrack.User, nixtrack.UserInput, nixtrack.UserQuery]
	ClientStore  = Store[nixtrack.Client, nixtrack.ClientInput, nixtrack.ClientQuery]
	VehicleStore = Store[nixtrack.Vehicle, nixtrack.VehicleInput, nixtrack.VehicleQuery]
	AgentStore   = Store[nixtrack.Agent, nixtrack.AgentInput, nixtrack.AgentQuery]
	OrderStore   = Store[nixtrack.Order, nixtrack.OrderInput, nixtrack.OrderQuery]
)

var (
	userMessages = Messages{
		ListFailed:   "Error al cargar usuarios",
		FetchFailed:  "Error al cargar usuario",
		CreateFailed: "Error al crear usuario",
		UpdateFailed: "Error al actualizar usuario",
		DeleteFailed: "Error al eliminar usuario",
	}
	clientMessages = Messages{
		ListFailed:   "Error al cargar clientes",
		FetchFailed:  "Error al cargar cliente",
		Created:      "Cliente creado exitosamente",
		CreateFailed: "Error al crear cliente",
		Updated:      "Cliente actualizado exitosamente",
		UpdateFailed: "Error al actualizar cliente",
		Deleted:      "Cliente eliminado exitosamente",
		DeleteFailed: "Error al eliminar cliente",
	}
	vehicleMessages = Messages{
		ListFailed:   "Error al cargar vehículos",
		FetchFailed:  "Error al cargar vehículo",
		Created:      "Vehículo creado exitosamente",
		CreateFailed: "Error al crear vehículo",
		Updated:      "Vehículo actualizado exitosamente",
		UpdateFailed: "Error al actualizar vehículo",
		Deleted:      "Vehículo eliminado exitosamente",
		DeleteFailed: "Error al eliminar vehículo",
	}
	agentMessages = Messages{
		ListFailed:   "Error al cargar escoltas",
		FetchFailed:  "Error al cargar escolta",
		Created:      "Escolta creado exitosamente",
		CreateFailed: "Error al crear escolta",
		Updated:      "Escolta actualizado exitosamente",
		UpdateFailed: "Error al actualizar escolta",
		Deleted:      "Escolta eliminado exitosamente",
		DeleteFailed: "Error al eliminar escolta",
	}
	orderMessages = Messages{
		ListFailed:   "Error al cargar órdenes",
		FetchFailed:  "Error al cargar orden",
		Created:      "Orden creada exitosamente",
		CreateFailed: "Error al crear orden",
		Updated:      "Orden actualizada exitosamente",
		UpdateFailed: "Error al actualizar orden",
		Deleted:      "Orden eliminada exitosamente",
		DeleteFailed: "Error al eliminar orden",
	}
)

// UserDeactivator flags users inactive.
type UserDeactivator interface {
	DeactivateUser(ctx context.Context, id int64) (nixtrack.User, error)
}

// Users is the user store plus deactivation.
type Users struct {
	*UserStore
	deactivator UserDeactivator
}

// NewUsers builds the user store.
func NewUsers(api EntityAPI[nixtrack.User, nixtrack.UserInput, nixtrack.UserQuery], deactivator UserDeactivator, opts Options) *Users {
	return &Users{
		UserStore:   NewStore("users", api, func(u nixtrack.User) int64 { return u.ID }, userMessages, opts),
		deactivator: deactivator,
	}
}

// Deactivate flags a user inactive and patches it in place like Update.
func (u *Users) Deactivate(ctx context.Context, id int64) (nixtrack.User, error) {
	var out nixtrack.User
	err := u.run(OpDeactivate, false, func() error {
		var err error
		out, err = u.deactivator.DeactivateUser(ctx, id)
		return err
	}, func(err error) {
		if err != nil {
			u.fail(err, "Error al desactivar usuario")
			return
		}
		u.replace(out)
	})
	u.notify(err, "", "Error al desactivar usuario")
	return out, err
}

// NewClients builds the client store. Clients are keyed by id_client.
func NewClients(api EntityAPI[nixtrack.Client, nixtrack.ClientInput, nixtrack.ClientQuery], opts Options) *ClientStore {
	return NewStore("clients", api, func(c nixtrack.Client) int64 { return c.IDClient }, clientMessages, opts)
}

// NewAgents builds the escort agent store.
func NewAgents(api EntityAPI[nixtrack.Agent, nixtrack.AgentInput, nixtrack.AgentQuery], opts Options) *AgentStore {
	return NewStore("agents", api, func(a nixtrack.Agent) int64 { return a.ID }, agentMessages, opts)
}

// EscortLister lists the vehicles usable as escorts.
type EscortLister interface {
	EscortVehicles(ctx context.Context) ([]nixtrack.Vehicle, error)
}

// Vehicles is the vehicle store plus the escort vehicle list used by
// order forms.
type Vehicles struct {
	*VehicleStore
	escorts     EscortLister
	escortItems []nixtrack.Vehicle
}

// NewVehicles builds the vehicle store.
func NewVehicles(api EntityAPI[nixtrack.Vehicle, nixtrack.VehicleInput, nixtrack.VehicleQuery], escorts EscortLister, opts Options) *Vehicles {
	return &Vehicles{
		VehicleStore: NewStore("vehicles", api, func(v nixtrack.Vehicle) int64 { return v.ID }, vehicleMessages, opts),
		escorts:      escorts,
	}
}

// LoadEscorts replaces the escort vehicle list.
func (v *Vehicles) LoadEscorts(ctx context.Context) error {
	var items []nixtrack.Vehicle
	return v.run(OpEscorts, true, func() error {
		var err error
		items, err = v.escorts.EscortVehicles(ctx)
		return err
	}, func(err error) {
		if err != nil {
			v.fail(err, "Error al cargar vehículos de escolta")
			return
		}
		v.escortItems = items
	})
}

// Escorts returns a copy of the escort vehicle list.
func (v *Vehicles) Escorts() []nixtrack.Vehicle {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.escortItems)
}

// OrderTransitioner triggers server-side order status transitions.
type OrderTransitioner interface {
	FinalizeOrder(ctx context.Context, id int64, arrivalAt string) (nixtrack.Order, error)
	CancelOrder(ctx context.Context, id int64, reason string) (nixtrack.Order, error)
	ActivateOrder(ctx context.Context, id int64) (nixtrack.Order, error)
}

// Orders is the order store plus status transitions. Transitions patch the
// returned order like Update but leave Loading and Error alone.
type Orders struct {
	*OrderStore
	transitions OrderTransitioner
}

// NewOrders builds the order store.
func NewOrders(api EntityAPI[nixtrack.Order, nixtrack.OrderInput, nixtrack.OrderQuery], transitions OrderTransitioner, opts Options) *Orders {
	return &Orders{
		OrderStore:  NewStore("orders", api, func(o nixtrack.Order) int64 { return o.ID }, orderMessages, opts),
		transitions: transitions,
	}
}

// Finalize marks the order delivered at arrivalAt.
func (o *Orders) Finalize(ctx context.Context, id int64, arrivalAt string) (nixtrack.Order, error) {
	return o.transition(OpFinalize, func() (nixtrack.Order, error) {
		return o.transitions.FinalizeOrder(ctx, id, arrivalAt)
	}, "Orden finalizada exitosamente", "Error al finalizar orden")
}

// Cancel cancels the order. An empty reason is rejected before any request.
func (o *Orders) Cancel(ctx context.Context, id int64, reason string) (nixtrack.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nixtrack.Order{}, nixtrack.ErrReasonRequired
	}
	return o.transition(OpCancel, func() (nixtrack.Order, error) {
		return o.transitions.CancelOrder(ctx, id, reason)
	}, "Orden cancelada exitosamente", "Error al cancelar orden")
}

// Activate moves a pending order into transit.
func (o *Orders) Activate(ctx context.Context, id int64) (nixtrack.Order, error) {
	return o.transition(OpActivate, func() (nixtrack.Order, error) {
		return o.transitions.ActivateOrder(ctx, id)
	}, "Orden activada exitosamente", "Error al activar orden")
}

func (o *Orders) transition(op Op, call func() (nixtrack.Order, error), success, fallback string) (nixtrack.Order, error) {
	var out nixtrack.Order
	err := o.silent(op, func() error {
		var err error
		out, err = call()
		return err
	}, func() {
		o.replace(out)
	})
	o.notify(err, success, fallback)
	return out, err
}
