package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/nixtrack/internal/nixtrack"
)

type orderAPI = fakeEntityAPI[nixtrack.Order, nixtrack.OrderInput, nixtrack.OrderQuery]

type fakeTransitions struct {
	calls  []string
	result nixtrack.Order
	err    error
	gate   *gate[nixtrack.Order]
}

func (f *fakeTransitions) respond(ctx context.Context, call string) (nixtrack.Order, error) {
	f.calls = append(f.calls, call)
	if f.gate != nil {
		return f.gate.wait(ctx)
	}
	return f.result, f.err
}

func (f *fakeTransitions) FinalizeOrder(ctx context.Context, _ int64, _ string) (nixtrack.Order, error) {
	return f.respond(ctx, "finalize")
}

func (f *fakeTransitions) CancelOrder(ctx context.Context, _ int64, _ string) (nixtrack.Order, error) {
	return f.respond(ctx, "cancel")
}

func (f *fakeTransitions) ActivateOrder(ctx context.Context, _ int64) (nixtrack.Order, error) {
	return f.respond(ctx, "activate")
}

func seededOrders(t *testing.T, tx *fakeTransitions) (*Orders, *orderAPI, *recordingNotifier) {
	t.Helper()
	api := &orderAPI{
		ListFn: func(context.Context, nixtrack.OrderQuery) (nixtrack.Page[nixtrack.Order], error) {
			return nixtrack.Page[nixtrack.Order]{
				Items: []nixtrack.Order{
					{ID: 1, StatusID: nixtrack.StatusPending},
					{ID: 2, StatusID: nixtrack.StatusInTransit},
				},
				Pagination: nixtrack.Pagination{CurrentPage: 1, PerPage: 10, Total: 2, TotalPages: 1},
			}, nil
		},
		GetFn: func(_ context.Context, id int64) (nixtrack.Order, error) {
			return nixtrack.Order{ID: id, StatusID: nixtrack.StatusInTransit}, nil
		},
	}
	opts, n, _ := testOptions()
	o := NewOrders(api, tx, opts)
	require.NoError(t, o.List(context.Background(), nixtrack.OrderQuery{}))
	return o, api, n
}

func TestOrders_FinalizePatchesLikeUpdate(t *testing.T) {
	tx := &fakeTransitions{result: nixtrack.Order{ID: 2, StatusID: nixtrack.StatusDelivered, ArrivalAt: "2026-02-01 09:00:00"}}
	o, _, n := seededOrders(t, tx)
	require.NoError(t, o.FetchOne(context.Background(), 2))

	got, err := o.Finalize(context.Background(), 2, "2026-02-01 09:00:00")
	require.NoError(t, err)
	assert.Equal(t, nixtrack.StatusDelivered, got.StatusID)

	snap := o.Snapshot()
	assert.Equal(t, nixtrack.StatusDelivered, snap.Items[1].StatusID)
	assert.Equal(t, int64(2), snap.Items[1].ID)
	require.NotNil(t, snap.Selected)
	assert.Equal(t, nixtrack.StatusDelivered, snap.Selected.StatusID)
	assert.Equal(t, 2, snap.Pagination.Total)
	assert.Equal(t, []string{"Orden finalizada exitosamente"}, n.Successes())
}

func TestOrders_TransitionsLeaveLoadingAndError(t *testing.T) {
	g := newGate[nixtrack.Order]()
	tx := &fakeTransitions{gate: g}
	o, api, _ := seededOrders(t, tx)

	api.ListFn = func(context.Context, nixtrack.OrderQuery) (nixtrack.Page[nixtrack.Order], error) {
		return nixtrack.Page[nixtrack.Order]{}, apiError(500, "Error del servidor")
	}
	require.Error(t, o.List(context.Background(), nixtrack.OrderQuery{}))
	require.Equal(t, "Error del servidor", o.Err())

	done := async(func() error { _, err := o.Activate(context.Background(), 1); return err })
	r := g.next(t)
	assert.False(t, o.Loading(), "transitions are not tracked as loading")
	assert.Equal(t, "Error del servidor", o.Err(), "starting a transition keeps the error")

	r <- reply[nixtrack.Order]{val: nixtrack.Order{ID: 1, StatusID: nixtrack.StatusInTransit}}
	require.NoError(t, await(t, done))
	assert.Equal(t, "Error del servidor", o.Err())
	assert.Equal(t, nixtrack.StatusInTransit, o.Snapshot().Items[0].StatusID)
}

func TestOrders_TransitionFailureNotifiesOnly(t *testing.T) {
	tx := &fakeTransitions{err: apiError(422, "La orden ya fue finalizada")}
	o, _, n := seededOrders(t, tx)
	before := o.Snapshot()

	_, err := o.Cancel(context.Background(), 2, "cliente desistió")
	require.Error(t, err)

	snap := o.Snapshot()
	assert.Equal(t, before.Items, snap.Items)
	assert.Empty(t, snap.Error)
	assert.Equal(t, []string{"La orden ya fue finalizada"}, n.Errors())
}

func TestOrders_CancelRequiresReason(t *testing.T) {
	tx := &fakeTransitions{}
	o, _, n := seededOrders(t, tx)

	_, err := o.Cancel(context.Background(), 2, "  ")
	assert.True(t, errors.Is(err, nixtrack.ErrReasonRequired))
	assert.Empty(t, tx.calls)
	assert.Empty(t, n.Errors())
}

type fakeDeactivator struct {
	user nixtrack.User
	err  error
}

func (f fakeDeactivator) DeactivateUser(context.Context, int64) (nixtrack.User, error) {
	return f.user, f.err
}

func TestUsers_DeactivatePatchesInPlace(t *testing.T) {
	api := &fakeEntityAPI[nixtrack.User, nixtrack.UserInput, nixtrack.UserQuery]{
		ListFn: func(context.Context, nixtrack.UserQuery) (nixtrack.Page[nixtrack.User], error) {
			return nixtrack.Page[nixtrack.User]{Items: []nixtrack.User{
				{ID: 1, IsActive: nixtrack.FlagOn},
				{ID: 2, IsActive: nixtrack.FlagOn},
			}}, nil
		},
	}
	opts, n, _ := testOptions()
	u := NewUsers(api, fakeDeactivator{user: nixtrack.User{ID: 2, IsActive: nixtrack.FlagOff}}, opts)
	require.NoError(t, u.List(context.Background(), nixtrack.UserQuery{}))

	_, err := u.Deactivate(context.Background(), 2)
	require.NoError(t, err)

	snap := u.Snapshot()
	assert.True(t, snap.Items[0].IsActive.Bool())
	assert.False(t, snap.Items[1].IsActive.Bool())
	assert.Empty(t, n.Successes(), "users raise no success notifications")
}

type fakeEscorts struct {
	items []nixtrack.Vehicle
	err   error
}

func (f fakeEscorts) EscortVehicles(context.Context) ([]nixtrack.Vehicle, error) {
	return f.items, f.err
}

func TestVehicles_LoadEscorts(t *testing.T) {
	api := &fakeEntityAPI[nixtrack.Vehicle, nixtrack.VehicleInput, nixtrack.VehicleQuery]{}
	opts, _, _ := testOptions()
	v := NewVehicles(api, fakeEscorts{items: []nixtrack.Vehicle{{ID: 4, IsEscortVehicle: nixtrack.FlagOn}}}, opts)

	require.NoError(t, v.LoadEscorts(context.Background()))
	escorts := v.Escorts()
	require.Len(t, escorts, 1)
	assert.Equal(t, int64(4), escorts[0].ID)
	assert.Empty(t, v.Snapshot().Items, "escorts do not touch the paginated list")

	v.escorts = fakeEscorts{err: errors.New("offline")}
	require.Error(t, v.LoadEscorts(context.Background()))
	assert.Equal(t, "Error al cargar vehículos de escolta", v.Err())
	assert.Len(t, v.Escorts(), 1)
}

func TestClients_KeyedByIDClient(t *testing.T) {
	s, api, _, _ := seededClients(t, clientPage(2, 10, 11))
	api.UpdateFn = func(_ context.Context, id int64, _ nixtrack.ClientInput) (nixtrack.Client, error) {
		return nixtrack.Client{IDClient: id, CompanyName: "patched"}, nil
	}

	_, err := s.Update(context.Background(), 11, nixtrack.ClientInput{})
	require.NoError(t, err)
	assert.Equal(t, "patched", s.Snapshot().Items[1].CompanyName)
}
