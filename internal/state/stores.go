package state

import "github.com/five82/nixtrack/internal/nixtrack"

// Stores is the process-wide set of stores, created once at startup.
type Stores struct {
	Auth         *Auth
	Users        *Users
	Clients      *ClientStore
	Vehicles     *Vehicles
	Agents       *AgentStore
	Orders       *Orders
	OrderDetails *OrderDetails
	Dashboard    *Dashboard
	Catalog      *Catalog

	VehicleFiles *Gallery
	AgentFiles   *Gallery
	OrderFiles   *Gallery
}

// New wires every store to client. auth must be built first so the client's
// token source and unauthorized hook can point at it.
func New(client *nixtrack.APIClient, auth *Auth, opts Options) *Stores {
	return &Stores{
		Auth:         auth,
		Users:        NewUsers(client.Users(), client, opts),
		Clients:      NewClients(client.Clients(), opts),
		Vehicles:     NewVehicles(client.Vehicles(), client, opts),
		Agents:       NewAgents(client.Agents(), opts),
		Orders:       NewOrders(client.Orders(), client, opts),
		OrderDetails: NewOrderDetails(client, opts),
		Dashboard:    NewDashboard(client, opts),
		Catalog:      NewCatalog(client, opts),
		VehicleFiles: NewGallery(client, nixtrack.ParentVehicle, opts),
		AgentFiles:   NewGallery(client, nixtrack.ParentAgent, opts),
		OrderFiles:   NewGallery(client, nixtrack.ParentOrder, opts),
	}
}
