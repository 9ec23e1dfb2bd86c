package state

import (
	"context"
	"slices"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// Collection is a point-in-time copy of one entity collection.
type Collection[T any] struct {
	Items      []T
	Selected   *T
	Loading    bool
	Error      string
	Pagination *nixtrack.Pagination
	// Pending lists the operation kinds in flight, sorted.
	Pending []Op
}

// EntityAPI is the slice of the API client one entity store consumes.
// nixtrack.Resource satisfies it.
type EntityAPI[T, In any, Q nixtrack.Query] interface {
	List(ctx context.Context, q Q) (nixtrack.Page[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, in In) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Messages are the notification texts of one entity. Empty success
// messages raise no notification.
type Messages struct {
	ListFailed   string
	FetchFailed  string
	Created      string
	CreateFailed string
	Updated      string
	UpdateFailed string
	Deleted      string
	DeleteFailed string
}

// Store caches one paginated entity collection plus a selected entity and
// applies the outcome of every operation to it.
type Store[T, In any, Q nixtrack.Query] struct {
	core

	api  EntityAPI[T, In, Q]
	id   func(T) int64
	msgs Messages

	items      []T
	selected   *T
	pagination *nixtrack.Pagination
}

// NewStore builds an empty store. id extracts the identity of an entity.
func NewStore[T, In any, Q nixtrack.Query](entity string, api EntityAPI[T, In, Q], id func(T) int64, msgs Messages, opts Options) *Store[T, In, Q] {
	s := &Store[T, In, Q]{api: api, id: id, msgs: msgs, items: []T{}}
	s.setup(entity, opts)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store[T, In, Q]) Snapshot() Collection[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Collection[T]{
		Items:   slices.Clone(s.items),
		Loading: s.track.loading(),
		Error:   s.err,
		Pending: s.track.ops(),
	}
	if snap.Items == nil {
		snap.Items = []T{}
	}
	if s.selected != nil {
		v := *s.selected
		snap.Selected = &v
	}
	if s.pagination != nil {
		p := *s.pagination
		snap.Pagination = &p
	}
	return snap
}

// List fetches a page and replaces items and pagination with it. On
// failure both are kept. An outcome older than one already applied is
// discarded.
func (s *Store[T, In, Q]) List(ctx context.Context, q Q) error {
	var page nixtrack.Page[T]
	return s.run(OpList, true, func() error {
		var err error
		page, err = s.api.List(ctx, q)
		return err
	}, func(err error) {
		if err != nil {
			s.fail(err, s.msgs.ListFailed)
			return
		}
		s.items = slices.Clone(page.Items)
		if s.items == nil {
			s.items = []T{}
		}
		p := page.Pagination
		s.pagination = &p
	})
}

// FetchOne loads one entity into Selected. Items are untouched.
func (s *Store[T, In, Q]) FetchOne(ctx context.Context, id int64) error {
	var got T
	return s.run(OpFetch, true, func() error {
		var err error
		got, err = s.api.Get(ctx, id)
		return err
	}, func(err error) {
		if err != nil {
			s.fail(err, s.msgs.FetchFailed)
			return
		}
		s.selected = &got
	})
}

// Create posts in and prepends the created entity.
func (s *Store[T, In, Q]) Create(ctx context.Context, in In) (T, error) {
	var created T
	err := s.run(OpCreate, false, func() error {
		var err error
		created, err = s.api.Create(ctx, in)
		return err
	}, func(err error) {
		if err != nil {
			s.fail(err, s.msgs.CreateFailed)
			return
		}
		s.prepend(created)
	})
	s.notify(err, s.msgs.Created, s.msgs.CreateFailed)
	return created, err
}

// Update sends a partial update and replaces the entity in place.
func (s *Store[T, In, Q]) Update(ctx context.Context, id int64, in In) (T, error) {
	var updated T
	err := s.run(OpUpdate, false, func() error {
		var err error
		updated, err = s.api.Update(ctx, id, in)
		return err
	}, func(err error) {
		if err != nil {
			s.fail(err, s.msgs.UpdateFailed)
			return
		}
		s.replace(updated)
	})
	s.notify(err, s.msgs.Updated, s.msgs.UpdateFailed)
	return updated, err
}

// Delete removes the entity server-side and drops it from items.
func (s *Store[T, In, Q]) Delete(ctx context.Context, id int64) error {
	err := s.run(OpDelete, false, func() error {
		return s.api.Delete(ctx, id)
	}, func(err error) {
		if err != nil {
			s.fail(err, s.msgs.DeleteFailed)
			return
		}
		s.remove(id)
	})
	s.notify(err, s.msgs.Deleted, s.msgs.DeleteFailed)
	return err
}

// ClearSelected drops the selected entity.
func (s *Store[T, In, Q]) ClearSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// The patch helpers below run with the write lock held.

func (s *Store[T, In, Q]) prepend(v T) {
	s.items = append([]T{v}, s.items...)
	if s.pagination != nil {
		s.pagination.Total++
	}
}

// replace swaps v in at the position of the item with the same identity and
// refreshes Selected when it matches. Entities not on the cached page are
// ignored.
func (s *Store[T, In, Q]) replace(v T) {
	key := s.id(v)
	if i := slices.IndexFunc(s.items, func(item T) bool { return s.id(item) == key }); i >= 0 {
		s.items[i] = v
	}
	if s.selected != nil && s.id(*s.selected) == key {
		s.selected = &v
	}
}

func (s *Store[T, In, Q]) remove(id int64) {
	s.items = slices.DeleteFunc(s.items, func(item T) bool { return s.id(item) == id })
	if s.pagination != nil {
		s.pagination.Total--
	}
}
