package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/nixtrack/internal/nixtrack"
)

type fakeDashboardAPI struct {
	mu        sync.Mutex
	orders    []nixtrack.Order
	ordersErr error
	counts    map[int64]int
	countErr  error
	clientIDs []int64
	queries   []nixtrack.OrderQuery
}

func (f *fakeDashboardAPI) ActiveOrders(_ context.Context, clientID int64) ([]nixtrack.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clientIDs = append(f.clientIDs, clientID)
	return f.orders, f.ordersErr
}

func (f *fakeDashboardAPI) CountOrders(_ context.Context, q nixtrack.OrderQuery) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[q.StatusID], nil
}

func levels(orders []nixtrack.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.StatusLevel
	}
	return out
}

func TestSortByPriority_StableByLevel(t *testing.T) {
	in := []nixtrack.Order{
		{ID: 1, StatusLevel: "green"},
		{ID: 2, StatusLevel: "red"},
		{ID: 3, StatusLevel: "yellow"},
		{ID: 4, StatusLevel: ""},
		{ID: 5, StatusLevel: "red"},
		{ID: 6, StatusLevel: "purple"},
		{ID: 7, StatusLevel: "green"},
	}

	out := SortByPriority(in)

	ids := make([]int64, len(out))
	for i, o := range out {
		ids[i] = o.ID
	}
	assert.Equal(t, []int64{2, 5, 3, 1, 7, 4, 6}, ids)
	assert.Equal(t, int64(1), in[0].ID, "input is not reordered")
}

func TestStatusPriority(t *testing.T) {
	assert.Equal(t, 1, StatusPriority("red"))
	assert.Equal(t, 2, StatusPriority("yellow"))
	assert.Equal(t, 3, StatusPriority("green"))
	assert.Equal(t, 4, StatusPriority(""))
	assert.Equal(t, 4, StatusPriority("RED"))
}

func TestScopeClientID(t *testing.T) {
	assert.Zero(t, ScopeClientID(nixtrack.UserProfile{RoleID: nixtrack.RoleAdmin, ClientID: 9}))
	assert.Equal(t, int64(9), ScopeClientID(nixtrack.UserProfile{RoleID: nixtrack.RoleSupervisor, ClientID: 9}))
	assert.Equal(t, int64(3), ScopeClientID(nixtrack.UserProfile{RoleID: nixtrack.RoleClient, ClientID: 3}))
}

func TestDashboard_RefreshSortsStampsAndCounts(t *testing.T) {
	api := &fakeDashboardAPI{
		orders: []nixtrack.Order{
			{ID: 1, StatusLevel: "green"},
			{ID: 2, StatusLevel: "red"},
			{ID: 3, StatusLevel: "yellow"},
			{ID: 4},
		},
		counts: map[int64]int{
			nixtrack.StatusInTransit: 5,
			nixtrack.StatusPending:   2,
			nixtrack.StatusDelivered: 40,
			nixtrack.StatusCancelled: 1,
		},
	}
	now := time.Date(2026, 4, 2, 15, 4, 5, 0, time.Local)
	opts, _, _ := testOptions()
	opts.Now = func() time.Time { return now }
	d := NewDashboard(api, opts)

	operator := nixtrack.UserProfile{ID: 8, RoleID: nixtrack.RoleOperator, ClientID: 12}
	require.NoError(t, d.Refresh(context.Background(), operator))

	snap := d.Snapshot()
	assert.Equal(t, []string{"red", "yellow", "green", ""}, levels(snap.ActiveOrders))
	assert.Equal(t, Stats{TotalActive: 5, TotalPlanned: 2, TotalFinished: 40, TotalCancelled: 1}, snap.Stats)
	assert.True(t, snap.LastUpdate.Equal(now))
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	assert.Equal(t, []int64{12}, api.clientIDs)
	require.Len(t, api.queries, 4)
	for _, q := range api.queries {
		assert.Equal(t, int64(12), q.ClientID)
	}
}

func TestDashboard_AdminSeesAllClients(t *testing.T) {
	api := &fakeDashboardAPI{counts: map[int64]int{}}
	opts, _, _ := testOptions()
	d := NewDashboard(api, opts)

	require.NoError(t, d.Refresh(context.Background(), nixtrack.UserProfile{RoleID: nixtrack.RoleAdmin, ClientID: 4}))
	assert.Equal(t, []int64{0}, api.clientIDs)
	for _, q := range api.queries {
		assert.Zero(t, q.ClientID)
	}
}

func TestDashboard_FailureKeepsPreviousData(t *testing.T) {
	api := &fakeDashboardAPI{
		orders: []nixtrack.Order{{ID: 1, StatusLevel: "red"}},
		counts: map[int64]int{nixtrack.StatusInTransit: 1},
	}
	first := time.Date(2026, 4, 2, 15, 0, 0, 0, time.Local)
	clock := first
	opts, _, _ := testOptions()
	opts.Now = func() time.Time { return clock }
	d := NewDashboard(api, opts)
	user := nixtrack.UserProfile{RoleID: nixtrack.RoleAdmin}
	require.NoError(t, d.Refresh(context.Background(), user))

	api.ordersErr = apiError(503, "Servicio no disponible")
	api.countErr = errors.New("connection reset")
	clock = first.Add(5 * time.Minute)
	require.Error(t, d.Refresh(context.Background(), user))

	snap := d.Snapshot()
	assert.Len(t, snap.ActiveOrders, 1)
	assert.Equal(t, 1, snap.Stats.TotalActive)
	assert.True(t, snap.LastUpdate.Equal(first), "LastUpdate only moves on success")
	assert.NotEmpty(t, snap.Error)
}

func TestDashboard_StatsFailureStillAppliesOrders(t *testing.T) {
	api := &fakeDashboardAPI{
		orders: []nixtrack.Order{{ID: 1, StatusLevel: "green"}},
		counts: map[int64]int{nixtrack.StatusInTransit: 1, nixtrack.StatusPending: 3},
	}
	first := time.Date(2026, 4, 2, 15, 0, 0, 0, time.Local)
	clock := first
	opts, _, _ := testOptions()
	opts.Now = func() time.Time { return clock }
	d := NewDashboard(api, opts)
	user := nixtrack.UserProfile{RoleID: nixtrack.RoleAdmin}
	require.NoError(t, d.Refresh(context.Background(), user))

	api.orders = []nixtrack.Order{{ID: 2, StatusLevel: "green"}, {ID: 3, StatusLevel: "red"}}
	api.countErr = errors.New("connection reset")
	clock = first.Add(5 * time.Minute)
	require.Error(t, d.Refresh(context.Background(), user))

	snap := d.Snapshot()
	require.Len(t, snap.ActiveOrders, 2)
	assert.Equal(t, int64(3), snap.ActiveOrders[0].ID, "new orders are applied and sorted")
	assert.True(t, snap.LastUpdate.Equal(clock), "LastUpdate follows the orders half")
	assert.Equal(t, Stats{TotalActive: 1, TotalPlanned: 3}, snap.Stats, "stats keep their previous values")
	assert.Equal(t, "Error al cargar estadísticas", snap.Error)
	assert.False(t, snap.Loading)
}

func TestDashboard_LastUpdateZeroBeforeFirstFetch(t *testing.T) {
	opts, _, _ := testOptions()
	d := NewDashboard(&fakeDashboardAPI{}, opts)
	snap := d.Snapshot()
	assert.True(t, snap.LastUpdate.IsZero())
	assert.Empty(t, snap.ActiveOrders)
}
