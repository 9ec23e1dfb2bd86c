package nixtrack

import (
	"encoding/json"
	"strings"
	"time"
)

const apiTimestampLayout = "2006-01-02 15:04:05"

// Flag is the 0/1 integer the API uses for booleans.
type Flag int

const (
	FlagOff Flag = 0
	FlagOn  Flag = 1
)

// Bool reports whether the flag is set.
func (f Flag) Bool() bool { return f == FlagOn }

// FlagOf converts a bool to its wire form.
func FlagOf(b bool) Flag {
	if b {
		return FlagOn
	}
	return FlagOff
}

// FlagPtr returns a pointer to the wire form of b, for partial updates.
func FlagPtr(b bool) *Flag {
	f := FlagOf(b)
	return &f
}

// Role identifiers as assigned by the API.
const (
	RoleAdmin      int64 = 1
	RoleSupervisor int64 = 2
	RoleOperator   int64 = 3
	RoleClient     int64 = 4
)

// Order status identifiers (track_status catalog).
const (
	StatusPending      int64 = 1
	StatusInTransit    int64 = 2
	StatusAtCheckpoint int64 = 3
	StatusDelivered    int64 = 4
	StatusCancelled    int64 = 5
	StatusDelayed      int64 = 6
	StatusIncident     int64 = 7
)

// Status levels ("semáforo") computed server-side per order.
const (
	LevelRed    = "red"
	LevelYellow = "yellow"
	LevelGreen  = "green"
)

// Checkpoint sequence markers.
const (
	SequenceWithIssue Flag = 0
	SequenceNoIssue   Flag = 1
)

// Pagination mirrors the normalized paging block cached alongside each list.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Role describes an access role.
type Role struct {
	IDRole  int64  `json:"id_role"`
	Name    string `json:"name"`
	IsAdmin Flag   `json:"is_admin"`
}

// Country is a catalog country.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Department is a catalog department (first administrative level).
type Department struct {
	IDDepartment int64  `json:"id_department"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	CountryCode  string `json:"country_code"`
}

// City is a catalog city.
type City struct {
	CityID         int64  `json:"city_id"`
	CountryCode    string `json:"country_code"`
	DepartmentCode string `json:"department_code"`
	Code           string `json:"code"`
	Name           string `json:"name"`
}

// TrackStatus is an order status catalog entry.
type TrackStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client is a customer company. Its identity field is id_client.
type Client struct {
	IDClient    int64  `json:"id_client"`
	CompanyName string `json:"company_name"`
	TaxID       string `json:"tax_id"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	CountryID   string `json:"country_id"`
	CityID      int64  `json:"city_id"`
	IsActive    Flag   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   int64  `json:"created_by"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	UpdatedBy   int64  `json:"updated_by,omitempty"`
}

// User is an operator account.
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	DocumentID string `json:"document_id"`
	Phone      string `json:"phone"`
	ClientID   int64  `json:"client_id"`
	Position   string `json:"position"`
	CityCode   string `json:"city_code"`
	RoleID     int64  `json:"role_id"`
	IsActive   Flag   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	CreatedBy  int64  `json:"created_by"`
	UpdatedAt  string `json:"updated_at,omitempty"`
	UpdatedBy  int64  `json:"updated_by,omitempty"`

	// Flattened relation fields sent by the users endpoints.
	RoleName   string `json:"role_name,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	IsAdmin    Flag   `json:"is_admin,omitempty"`

	Client *Client `json:"client,omitempty"`
	Role   *Role   `json:"role,omitempty"`
}

// Vehicle is a transport or escort vehicle.
type Vehicle struct {
	ID              int64   `json:"id"`
	ClientID        int64   `json:"client_id"`
	LicensePlate    string  `json:"license_plate"`
	Brand           string  `json:"brand"`
	VehicleType     string  `json:"vehicle_type"`
	ModelYear       string  `json:"model_year"`
	Color           string  `json:"color"`
	Capacity        string  `json:"capacity"`
	Container       string  `json:"container"`
	SerialNumbers   string  `json:"serial_numbers"`
	IsEscortVehicle Flag    `json:"is_escort_vehicle"`
	IsActive        Flag    `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
	CreatedBy       int64   `json:"created_by"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
	UpdatedBy       int64   `json:"updated_by,omitempty"`
	Client          *Client `json:"client,omitempty"`
	Files           []File  `json:"files,omitempty"`
}

// Agent is an escort agent.
type Agent struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	DocumentID string   `json:"document_id"`
	Mobile     string   `json:"mobile"`
	VehicleID  int64    `json:"vehicle_id"`
	IsActive   Flag     `json:"is_active"`
	CreatedAt  string   `json:"created_at"`
	CreatedBy  int64    `json:"created_by"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
	UpdatedBy  int64    `json:"updated_by,omitempty"`
	Vehicle    *Vehicle `json:"vehicle,omitempty"`
}

// Order is a tracked shipment. The nested Client, Vehicle, Escort and City
// values are read-only projections embedded by the server; they are never
// reconciled with the standalone collections.
type Order struct {
	ID                  int64        `json:"id"`
	ClientID            int64        `json:"client_id"`
	VehicleID           int64        `json:"vehicle_id"`
	ManifestNumber      string       `json:"manifest_number"`
	InsuranceCompany    string       `json:"insurance_company"`
	OriginCityCode      string       `json:"origin_city_code"`
	DestinationCityCode string       `json:"destination_city_code"`
	RouteDescription    string       `json:"route_description"`
	StatusLevel         string       `json:"status_level"`
	DistanceKM          float64      `json:"distance_km"`
	EstimatedTime       string       `json:"estimated_time"`
	Restrictions        string       `json:"restrictions"`
	TrackingLink        string       `json:"tracking_link"`
	Notes               string       `json:"notes"`
	CreatedAt           string       `json:"created_at"`
	DepartureAt         string       `json:"departure_at"`
	ArrivalAt           string       `json:"arrival_at"`
	StatusID            int64        `json:"status_id"`
	DriverName          string       `json:"driver_name"`
	DriverMobile        string       `json:"driver_mobile"`
	OrderNumber         string       `json:"order_number"`
	EscortID            *int64       `json:"escort_id"`
	CreatedBy           int64        `json:"created_by"`
	UpdatedAt           string       `json:"updated_at,omitempty"`
	UpdatedBy           int64        `json:"updated_by,omitempty"`
	IsDeleted           Flag         `json:"is_deleted"`
	Client              *Client      `json:"client,omitempty"`
	Vehicle             *Vehicle     `json:"vehicle,omitempty"`
	Escort              *Agent       `json:"escort,omitempty"`
	Status              *TrackStatus `json:"status,omitempty"`
	OriginCity          *City        `json:"origin_city,omitempty"`
	DestinationCity     *City        `json:"destination_city,omitempty"`
}

// ParsedDepartureAt returns DepartureAt as time.Time when possible.
func (o Order) ParsedDepartureAt() time.Time {
	return parseTime(o.DepartureAt)
}

// OrderDetail is a checkpoint report attached to an order.
type OrderDetail struct {
	ID             int64    `json:"id"`
	ShipmentID     int64    `json:"shipment_id"`
	ReportedAt     string   `json:"reported_at"`
	ReportedBy     string   `json:"reported_by"`
	LocationName   string   `json:"location_name"`
	SequenceNumber Flag     `json:"sequence_number"`
	Notes          *string  `json:"notes"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
	UpdatedBy      int64    `json:"updated_by,omitempty"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	IsDeleted      Flag     `json:"is_deleted"`
}

// ParsedReportedAt returns ReportedAt as time.Time when possible.
func (d OrderDetail) ParsedReportedAt() time.Time {
	return parseTime(d.ReportedAt)
}

// File is an attachment of a vehicle, agent, order or checkpoint. Only the
// parent field matching its owner is populated.
type File struct {
	ID           int64  `json:"id"`
	VehicleID    int64  `json:"vehicle_id,omitempty"`
	AgentID      int64  `json:"agent_id,omitempty"`
	ShipmentID   int64  `json:"shipment_id,omitempty"`
	CheckpointID int64  `json:"checkpoint_id,omitempty"`
	FileName     string `json:"file_name"`
	Description  string `json:"description"`
	FileURL      string `json:"file_url"`
	MimeType     string `json:"mime_type"`
	IsMainPhoto  Flag   `json:"is_main_photo"`
	CreatedBy    int64  `json:"created_by"`
	CreatedAt    string `json:"created_at"`
	IsDeleted    Flag   `json:"is_deleted"`
}

// UserProfile is the authenticated user as returned by login and profile.
type UserProfile struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	RoleID   int64  `json:"role_id"`
	ClientID int64  `json:"client_id"`
	IsActive int    `json:"is_active"`
}

// IsAdmin reports whether the profile may see data across all clients.
func (p UserProfile) IsAdmin() bool {
	return p.RoleID == RoleAdmin
}

// LoginRequest carries credentials for /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by login and register.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// RegisterRequest carries the fields accepted by /auth/register.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	DocumentID string `json:"document_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Position   string `json:"position,omitempty"`
	ClientID   int64  `json:"client_id,omitempty"`
	RoleID     int64  `json:"role_id,omitempty"`
	CityCode   string `json:"city_code,omitempty"`
}

// ClientInput is the create/update payload for clients. Zero fields are
// omitted so the same type serves partial updates.
type ClientInput struct {
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	CountryID   string `json:"country_id,omitempty"`
	CityID      int64  `json:"city_id,omitempty"`
	IsActive    *Flag  `json:"is_active,omitempty"`
}

// UserInput is the create/update payload for users. Password is only sent on create.
type UserInput struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ClientID   int64  `json:"client_id,omitempty"`
	Position   string `json:"position,omitempty"`
	CityCode   string `json:"city_code,omitempty"`
	RoleID     int64  `json:"role_id,omitempty"`
	IsActive   *Flag  `json:"is_active,omitempty"`
	Password   string `json:"password,omitempty"`
}

// VehicleInput is the create/update payload for vehicles.
type VehicleInput struct {
	ClientID        int64  `json:"client_id,omitempty"`
	LicensePlate    string `json:"license_plate,omitempty"`
	Brand           string `json:"brand,omitempty"`
	VehicleType     string `json:"vehicle_type,omitempty"`
	ModelYear       string `json:"model_year,omitempty"`
	Color           string `json:"color,omitempty"`
	Capacity        string `json:"capacity,omitempty"`
	Container       string `json:"container,omitempty"`
	SerialNumbers   string `json:"serial_numbers,omitempty"`
	IsEscortVehicle *Flag  `json:"is_escort_vehicle,omitempty"`
	IsActive        *Flag  `json:"is_active,omitempty"`
}

// AgentInput is the create/update payload for escort agents.
type AgentInput struct {
	Name       string `json:"name,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	VehicleID  int64  `json:"vehicle_id,omitempty"`
	IsActive   *Flag  `json:"is_active,omitempty"`
}

// OrderInput is the create/update payload for orders.
type OrderInput struct {
	ClientID            int64   `json:"client_id,omitempty"`
	VehicleID           int64   `json:"vehicle_id,omitempty"`
	ManifestNumber      string  `json:"manifest_number,omitempty"`
	InsuranceCompany    string  `json:"insurance_company,omitempty"`
	OriginCityCode      string  `json:"origin_city_code,omitempty"`
	DestinationCityCode string  `json:"destination_city_code,omitempty"`
	RouteDescription    string  `json:"route_description,omitempty"`
	DistanceKM          float64 `json:"distance_km,omitempty"`
	EstimatedTime       string  `json:"estimated_time,omitempty"`
	Restrictions        string  `json:"restrictions,omitempty"`
	TrackingLink        string  `json:"tracking_link,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	DepartureAt         string  `json:"departure_at,omitempty"`
	ArrivalAt           string  `json:"arrival_at,omitempty"`
	StatusID            int64   `json:"status_id,omitempty"`
	DriverName          string  `json:"driver_name,omitempty"`
	DriverMobile        string  `json:"driver_mobile,omitempty"`
	OrderNumber         string  `json:"order_number,omitempty"`
	EscortID            *int64  `json:"escort_id,omitempty"`
}

// OrderDetailInput is the create/update payload for checkpoint reports.
type OrderDetailInput struct {
	ShipmentID     int64    `json:"shipment_id,omitempty"`
	ReportedAt     string   `json:"reported_at,omitempty"`
	ReportedBy     string   `json:"reported_by,omitempty"`
	LocationName   string   `json:"location_name,omitempty"`
	SequenceNumber *Flag    `json:"sequence_number,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// VehicleHistoryEntry is one row of a vehicle's service history. The API
// does not fix its shape, so fields are kept raw.
type VehicleHistoryEntry map[string]json.RawMessage

// normalizeUser builds the Role and Client relations from the flattened
// role_name/client_name fields the users endpoints return.
func normalizeUser(u User) User {
	if u.Role == nil && strings.TrimSpace(u.RoleName) != "" {
		u.Role = &Role{IDRole: u.RoleID, Name: u.RoleName, IsAdmin: u.IsAdmin}
	}
	if u.Client == nil && strings.TrimSpace(u.ClientName) != "" {
		u.Client = &Client{IDClient: u.ClientID, CompanyName: u.ClientName}
	}
	return u
}

// FormatTimestamp renders t in the API's local "YYYY-MM-DD hh:mm:ss" form.
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(apiTimestampLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(apiTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
