package nixtrack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// ListOrderDetails returns every checkpoint report of an order.
func (c *APIClient) ListOrderDetails(ctx context.Context, orderID int64) ([]OrderDetail, error) {
	var out []OrderDetail
	if err := c.get(ctx, "/order-details/"+strconv.FormatInt(orderID, 10), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []OrderDetail{}
	}
	return out, nil
}

// GetOrderDetail fetches one checkpoint report.
func (c *APIClient) GetOrderDetail(ctx context.Context, id int64) (OrderDetail, error) {
	var out OrderDetail
	if err := c.get(ctx, "/order-details/detail/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return OrderDetail{}, err
	}
	return out, nil
}

// CreateOrderDetail creates a checkpoint report.
func (c *APIClient) CreateOrderDetail(ctx context.Context, in OrderDetailInput) (OrderDetail, error) {
	var out OrderDetail
	if err := c.doJSON(ctx, http.MethodPost, "/order-details", nil, in, &out); err != nil {
		return OrderDetail{}, err
	}
	return out, nil
}

// UpdateOrderDetail applies a partial update to a checkpoint report.
func (c *APIClient) UpdateOrderDetail(ctx context.Context, id int64, in OrderDetailInput) (OrderDetail, error) {
	var out OrderDetail
	if err := c.doJSON(ctx, http.MethodPut, "/order-details/"+strconv.FormatInt(id, 10), nil, in, &out); err != nil {
		return OrderDetail{}, err
	}
	return out, nil
}

// DeleteOrderDetail soft-deletes a checkpoint report.
func (c *APIClient) DeleteOrderDetail(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/order-details/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Upload is one file to send as multipart form data. Open is called once per
// upload attempt and the returned reader is closed afterwards.
type Upload struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileParent names an entity that owns file attachments.
type FileParent string

const (
	ParentVehicle FileParent = "vehicles"
	ParentAgent   FileParent = "agents"
	ParentOrder   FileParent = "orders"
)

func (p FileParent) idField() string {
	switch p {
	case ParentVehicle:
		return "vehicle_id"
	case ParentAgent:
		return "agent_id"
	case ParentOrder:
		return "order_id"
	}
	return ""
}

// supportsMainPhoto reports whether the parent accepts is_main_photo.
func (p FileParent) supportsMainPhoto() bool {
	return p == ParentVehicle || p == ParentAgent
}

func filesPath(parent FileParent, parentID int64) string {
	return "/" + string(parent) + "/" + strconv.FormatInt(parentID, 10) + "/files"
}

// ListFiles returns the attachments of a vehicle, agent or order.
func (c *APIClient) ListFiles(ctx context.Context, parent FileParent, parentID int64) ([]File, error) {
	var out []File
	if err := c.get(ctx, filesPath(parent, parentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadFile attaches a file to a vehicle, agent or order. mainPhoto is only
// sent for parents that have a main photo.
func (c *APIClient) UploadFile(ctx context.Context, parent FileParent, parentID int64, up Upload, description string, mainPhoto bool) (File, error) {
	if parent.idField() == "" {
		return File{}, fmt.Errorf("unknown file parent %q", parent)
	}
	fields := [][2]string{
		{parent.idField(), strconv.FormatInt(parentID, 10)},
		{"description", description},
	}
	if parent.supportsMainPhoto() {
		fields = append(fields, [2]string{"is_main_photo", boolField(mainPhoto)})
	}
	var out File
	if err := c.postMultipart(ctx, filesPath(parent, parentID), up, fields, &out); err != nil {
		return File{}, err
	}
	return out, nil
}

// DeleteFile removes an attachment.
func (c *APIClient) DeleteFile(ctx context.Context, parent FileParent, parentID, fileID int64) error {
	path := filesPath(parent, parentID) + "/" + strconv.FormatInt(fileID, 10)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// SetMainFile promotes an attachment to main photo.
func (c *APIClient) SetMainFile(ctx context.Context, parent FileParent, parentID, fileID int64) (File, error) {
	if !parent.supportsMainPhoto() {
		return File{}, fmt.Errorf("%s have no main photo", parent)
	}
	var out File
	path := filesPath(parent, parentID) + "/" + strconv.FormatInt(fileID, 10) + "/main"
	if err := c.doJSON(ctx, http.MethodPut, path, nil, nil, &out); err != nil {
		return File{}, err
	}
	return out, nil
}

// UploadOrderDetailFile attaches a file to a checkpoint report.
func (c *APIClient) UploadOrderDetailFile(ctx context.Context, detailID int64, up Upload, description string) (File, error) {
	fields := [][2]string{
		{"detail_id", strconv.FormatInt(detailID, 10)},
		{"description", description},
	}
	var out File
	if err := c.postMultipart(ctx, "/files/order-details", up, fields, &out); err != nil {
		return File{}, err
	}
	return out, nil
}

// ListOrderDetailFiles returns the attachments of a checkpoint report.
func (c *APIClient) ListOrderDetailFiles(ctx context.Context, orderID, detailID int64) ([]File, error) {
	var out []File
	path := "/orders/" + strconv.FormatInt(orderID, 10) + "/details/" + strconv.FormatInt(detailID, 10) + "/files"
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) postMultipart(ctx context.Context, path string, up Upload, fields [][2]string, dest any) error {
	if up.Open == nil {
		return fmt.Errorf("upload %q has no content", up.Name)
	}
	src, err := up.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", up.Name, err)
	}
	defer func() { _ = src.Close() }()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(up.Name)))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read upload %q: %w", up.Name, err)
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("write form field %s: %w", field[0], err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.send(req, path, dest)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Departments lists catalog departments, optionally for one country.
func (c *APIClient) Departments(ctx context.Context, countryCode string) ([]Department, error) {
	values := url.Values{}
	setString(values, "country_code", countryCode)
	var out []Department
	if err := c.get(ctx, "/catalog/departments", values, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cities lists catalog cities.
func (c *APIClient) Cities(ctx context.Context, q CityQuery) ([]City, error) {
	var out []City
	if err := c.get(ctx, "/catalog/cities", q.Values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// City fetches one catalog city.
func (c *APIClient) City(ctx context.Context, id int64) (City, error) {
	var out City
	if err := c.get(ctx, "/catalog/cities/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return City{}, err
	}
	return out, nil
}

// TrackStatuses lists the order status catalog.
func (c *APIClient) TrackStatuses(ctx context.Context) ([]TrackStatus, error) {
	var out []TrackStatus
	if err := c.get(ctx, "/catalog/statuses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Countries returns the supported countries. The API has no endpoint for them.
func (c *APIClient) Countries(context.Context) ([]Country, error) {
	return []Country{{Code: "CO", Name: "Colombia"}}, nil
}

// ActiveOrders returns the dashboard's active orders. clientID zero means all
// clients; the server enforces the caller's scope independently.
func (c *APIClient) ActiveOrders(ctx context.Context, clientID int64) ([]Order, error) {
	values := url.Values{}
	setID(values, "client_id", clientID)
	var out []Order
	if err := c.get(ctx, "/dashboard", values, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

// Login exchanges credentials for a token and profile.
func (c *APIClient) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var out LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// Register creates an account and returns its token and profile.
func (c *APIClient) Register(ctx context.Context, req RegisterRequest) (LoginResponse, error) {
	var out LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// Profile returns the profile of the token's owner.
func (c *APIClient) Profile(ctx context.Context) (UserProfile, error) {
	var out UserProfile
	if err := c.get(ctx, "/auth/profile", nil, &out); err != nil {
		return UserProfile{}, err
	}
	return out, nil
}

// Roles lists access roles.
func (c *APIClient) Roles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.get(ctx, "/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Role fetches one access role.
func (c *APIClient) Role(ctx context.Context, id int64) (Role, error) {
	var out Role
	if err := c.get(ctx, "/roles/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return Role{}, err
	}
	return out, nil
}
