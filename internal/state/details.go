package state

import (
	"context"
	"log"
	"slices"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// DetailsAPI is the checkpoint report slice of the API client.
type DetailsAPI interface {
	ListOrderDetails(ctx context.Context, orderID int64) ([]nixtrack.OrderDetail, error)
	GetOrderDetail(ctx context.Context, id int64) (nixtrack.OrderDetail, error)
	CreateOrderDetail(ctx context.Context, in nixtrack.OrderDetailInput) (nixtrack.OrderDetail, error)
	UpdateOrderDetail(ctx context.Context, id int64, in nixtrack.OrderDetailInput) (nixtrack.OrderDetail, error)
	DeleteOrderDetail(ctx context.Context, id int64) error
	UploadOrderDetailFile(ctx context.Context, detailID int64, up nixtrack.Upload, description string) (nixtrack.File, error)
}

// OrderDetailsState is a copy of the checkpoint reports of the last listed order.
type OrderDetailsState struct {
	OrderID  int64
	Items    []nixtrack.OrderDetail
	Selected *nixtrack.OrderDetail
	Loading  bool
	Error    string
	Pending  []Op
}

// OrderDetails caches the checkpoint reports of one order.
type OrderDetails struct {
	core
	api DetailsAPI

	orderID  int64
	items    []nixtrack.OrderDetail
	selected *nixtrack.OrderDetail
}

// NewOrderDetails builds an empty checkpoint report store.
func NewOrderDetails(api DetailsAPI, opts Options) *OrderDetails {
	d := &OrderDetails{api: api, items: []nixtrack.OrderDetail{}}
	d.setup("order_details", opts)
	return d
}

// Snapshot returns a copy of the current state.
func (d *OrderDetails) Snapshot() OrderDetailsState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := OrderDetailsState{
		OrderID: d.orderID,
		Items:   slices.Clone(d.items),
		Loading: d.track.loading(),
		Error:   d.err,
		Pending: d.track.ops(),
	}
	if snap.Items == nil {
		snap.Items = []nixtrack.OrderDetail{}
	}
	if d.selected != nil {
		v := *d.selected
		snap.Selected = &v
	}
	return snap
}

// List loads the reports of orderID, replacing the previous order's reports.
func (d *OrderDetails) List(ctx context.Context, orderID int64) error {
	var items []nixtrack.OrderDetail
	return d.run(OpList, true, func() error {
		var err error
		items, err = d.api.ListOrderDetails(ctx, orderID)
		return err
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al cargar reportes")
			return
		}
		d.orderID = orderID
		d.items = slices.Clone(items)
		if d.items == nil {
			d.items = []nixtrack.OrderDetail{}
		}
	})
}

// FetchOne loads one report into Selected.
func (d *OrderDetails) FetchOne(ctx context.Context, id int64) error {
	var got nixtrack.OrderDetail
	return d.run(OpFetch, true, func() error {
		var err error
		got, err = d.api.GetOrderDetail(ctx, id)
		return err
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al cargar reporte")
			return
		}
		d.selected = &got
	})
}

// Create creates a report and prepends it.
func (d *OrderDetails) Create(ctx context.Context, in nixtrack.OrderDetailInput) (nixtrack.OrderDetail, error) {
	return d.CreateWithFiles(ctx, in, nil)
}

// CreateWithFiles creates a report, then uploads each file in order. A failed
// upload is logged and skipped; the created report is returned regardless.
// Only the creation itself can fail the operation.
func (d *OrderDetails) CreateWithFiles(ctx context.Context, in nixtrack.OrderDetailInput, uploads []nixtrack.Upload) (nixtrack.OrderDetail, error) {
	var created nixtrack.OrderDetail
	err := d.run(OpCreate, false, func() error {
		var err error
		created, err = d.api.CreateOrderDetail(ctx, in)
		if err != nil {
			return err
		}
		for _, up := range uploads {
			if _, upErr := d.api.UploadOrderDetailFile(ctx, created.ID, up, ""); upErr != nil {
				log.Printf("upload %q to report %d failed: %v", up.Name, created.ID, upErr)
			}
		}
		return nil
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al crear reporte")
			return
		}
		d.items = append([]nixtrack.OrderDetail{created}, d.items...)
	})
	d.notify(err, "Reporte creado exitosamente", "Error al crear reporte")
	return created, err
}

// Update patches a report in place.
func (d *OrderDetails) Update(ctx context.Context, id int64, in nixtrack.OrderDetailInput) (nixtrack.OrderDetail, error) {
	var updated nixtrack.OrderDetail
	err := d.run(OpUpdate, false, func() error {
		var err error
		updated, err = d.api.UpdateOrderDetail(ctx, id, in)
		return err
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al actualizar reporte")
			return
		}
		if i := slices.IndexFunc(d.items, func(item nixtrack.OrderDetail) bool { return item.ID == updated.ID }); i >= 0 {
			d.items[i] = updated
		}
		if d.selected != nil && d.selected.ID == updated.ID {
			d.selected = &updated
		}
	})
	d.notify(err, "Reporte actualizado exitosamente", "Error al actualizar reporte")
	return updated, err
}

// Delete removes a report.
func (d *OrderDetails) Delete(ctx context.Context, id int64) error {
	err := d.run(OpDelete, false, func() error {
		return d.api.DeleteOrderDetail(ctx, id)
	}, func(err error) {
		if err != nil {
			d.fail(err, "Error al eliminar reporte")
			return
		}
		d.items = slices.DeleteFunc(d.items, func(item nixtrack.OrderDetail) bool { return item.ID == id })
	})
	d.notify(err, "Reporte eliminado exitosamente", "Error al eliminar reporte")
	return err
}

// Clear empties the store. Outcomes of lists still in flight are discarded.
func (d *OrderDetails) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.track.invalidate(OpList)
	d.track.invalidate(OpFetch)
	d.orderID = 0
	d.items = []nixtrack.OrderDetail{}
	d.selected = nil
	d.err = ""
}

// ClearSelected drops the selected report.
func (d *OrderDetails) ClearSelected() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = nil
}
