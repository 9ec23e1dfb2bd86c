package nixtrack

import (
	"net/url"
	"strconv"
	"strings"
)

// Query encodes list filters as URL parameters. Unset fields are omitted so
// the server applies its own defaults.
type Query interface {
	Values() url.Values
}

// ListParams holds the filters shared by every paginated listing.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	IsActive *Flag
}

func (p ListParams) encode(values url.Values) {
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if search := strings.TrimSpace(p.Search); search != "" {
		values.Set("search", search)
	}
	if p.IsActive != nil {
		values.Set("is_active", strconv.Itoa(int(*p.IsActive)))
	}
}

func setID(values url.Values, key string, id int64) {
	if id > 0 {
		values.Set(key, strconv.FormatInt(id, 10))
	}
}

func setString(values url.Values, key, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		values.Set(key, trimmed)
	}
}

// ClientQuery filters /clients.
type ClientQuery struct {
	ListParams
}

// Values implements Query.
func (q ClientQuery) Values() url.Values {
	values := url.Values{}
	q.encode(values)
	return values
}

// UserQuery filters /users.
type UserQuery struct {
	ListParams
	ClientID int64
	RoleID   int64
}

// Values implements Query.
func (q UserQuery) Values() url.Values {
	values := url.Values{}
	q.encode(values)
	setID(values, "client_id", q.ClientID)
	setID(values, "role_id", q.RoleID)
	return values
}

// VehicleQuery filters /vehicles.
type VehicleQuery struct {
	ListParams
	ClientID        int64
	IsEscortVehicle *Flag
}

// Values implements Query.
func (q VehicleQuery) Values() url.Values {
	values := url.Values{}
	q.encode(values)
	setID(values, "client_id", q.ClientID)
	if q.IsEscortVehicle != nil {
		values.Set("is_escort_vehicle", strconv.Itoa(int(*q.IsEscortVehicle)))
	}
	return values
}

// AgentQuery filters /agents.
type AgentQuery struct {
	ListParams
}

// Values implements Query.
func (q AgentQuery) Values() url.Values {
	values := url.Values{}
	q.encode(values)
	return values
}

// OrderQuery filters /orders.
type OrderQuery struct {
	ListParams
	ClientID     int64
	StatusID     int64
	VehicleID    int64
	LicensePlate string
	DateFrom     string
	DateTo       string
}

// Values implements Query.
func (q OrderQuery) Values() url.Values {
	values := url.Values{}
	q.encode(values)
	setID(values, "client_id", q.ClientID)
	setID(values, "status_id", q.StatusID)
	setID(values, "vehicle_id", q.VehicleID)
	setString(values, "license_plate", q.LicensePlate)
	setString(values, "date_from", q.DateFrom)
	setString(values, "date_to", q.DateTo)
	return values
}

// CityQuery filters /catalog/cities.
type CityQuery struct {
	DepartmentCode string
	Search         string
}

// Values implements Query.
func (q CityQuery) Values() url.Values {
	values := url.Values{}
	setString(values, "department_code", q.DepartmentCode)
	setString(values, "search", q.Search)
	return values
}
