package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// reply is the outcome a test hands to a gated call.
type reply[T any] struct {
	val T
	err error
}

// gate parks each call until the test resolves it, so tests can settle
// overlapping requests in any order.
type gate[T any] struct {
	calls chan chan reply[T]
}

func newGate[T any]() *gate[T] {
	return &gate[T]{calls: make(chan chan reply[T], 16)}
}

func (g *gate[T]) wait(ctx context.Context) (T, error) {
	ch := make(chan reply[T], 1)
	g.calls <- ch
	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// next returns the resolver of the next parked call.
func (g *gate[T]) next(t *testing.T) chan<- reply[T] {
	t.Helper()
	select {
	case ch := <-g.calls:
		return ch
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a gated call")
		return nil
	}
}

// async runs fn in a goroutine and returns a channel with its error.
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for operation")
		return nil
	}
}

// fakeEntityAPI records calls and delegates to the configured funcs.
type fakeEntityAPI[T, In any, Q nixtrack.Query] struct {
	mu          sync.Mutex
	ListCalls   []Q
	GetCalls    []int64
	CreateCalls []In
	UpdateCalls []int64
	DeleteCalls []int64

	ListFn   func(ctx context.Context, q Q) (nixtrack.Page[T], error)
	GetFn    func(ctx context.Context, id int64) (T, error)
	CreateFn func(ctx context.Context, in In) (T, error)
	UpdateFn func(ctx context.Context, id int64, in In) (T, error)
	DeleteFn func(ctx context.Context, id int64) error
}

func (f *fakeEntityAPI[T, In, Q]) List(ctx context.Context, q Q) (nixtrack.Page[T], error) {
	f.mu.Lock()
	f.ListCalls = append(f.ListCalls, q)
	f.mu.Unlock()
	return f.ListFn(ctx, q)
}

func (f *fakeEntityAPI[T, In, Q]) Get(ctx context.Context, id int64) (T, error) {
	f.mu.Lock()
	f.GetCalls = append(f.GetCalls, id)
	f.mu.Unlock()
	return f.GetFn(ctx, id)
}

func (f *fakeEntityAPI[T, In, Q]) Create(ctx context.Context, in In) (T, error) {
	f.mu.Lock()
	f.CreateCalls = append(f.CreateCalls, in)
	f.mu.Unlock()
	return f.CreateFn(ctx, in)
}

func (f *fakeEntityAPI[T, In, Q]) Update(ctx context.Context, id int64, in In) (T, error) {
	f.mu.Lock()
	f.UpdateCalls = append(f.UpdateCalls, id)
	f.mu.Unlock()
	return f.UpdateFn(ctx, id, in)
}

func (f *fakeEntityAPI[T, In, Q]) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.DeleteCalls = append(f.DeleteCalls, id)
	f.mu.Unlock()
	return f.DeleteFn(ctx, id)
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

// observation is one Recorder call.
type observation struct {
	Entity  string
	Op      string
	Outcome string
}

type recordingRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingRecorder) Observe(entity, op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{Entity: entity, Op: op, Outcome: outcome})
}

func (r *recordingRecorder) Observations() []observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observation(nil), r.obs...)
}

func testOptions() (Options, *recordingNotifier, *recordingRecorder) {
	n := &recordingNotifier{}
	r := &recordingRecorder{}
	return Options{Notifier: n, Recorder: r}, n, r
}

func apiError(status int, msg string) error {
	return &nixtrack.APIError{StatusCode: status, Path: "/test", Message: msg}
}
