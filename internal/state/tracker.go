package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// Op names an operation kind. Each store tracks its in-flight operations per kind.
type Op string

const (
	OpList       Op = "list"
	OpFetch      Op = "fetch"
	OpCreate     Op = "create"
	OpUpdate     Op = "update"
	OpDelete     Op = "delete"
	OpDeactivate Op = "deactivate"
	OpFinalize   Op = "finalize"
	OpCancel     Op = "cancel"
	OpActivate   Op = "activate"
	OpEscorts    Op = "escort_vehicles"
	OpUpload     Op = "upload"
	OpSetMain    Op = "set_main"

	OpActiveOrders Op = "active_orders"
	OpStats        Op = "stats"

	OpDepartments Op = "departments"
	OpCities      Op = "cities"
	OpStatuses    Op = "statuses"

	OpLogin    Op = "login"
	OpRegister Op = "register"
	OpProfile  Op = "profile"
	OpLogout   Op = "logout"
)

// Outcome labels reported to the Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// ticket identifies one issued operation.
type ticket struct {
	op  Op
	seq uint64
}

// tracker counts in-flight operations per kind and fences replace-style
// outcomes with a per-kind sequence number.
type tracker struct {
	pending map[Op]int
	issued  map[Op]uint64
	applied map[Op]uint64
}

func (t *tracker) init() {
	if t.pending == nil {
		t.pending = make(map[Op]int)
		t.issued = make(map[Op]uint64)
		t.applied = make(map[Op]uint64)
	}
}

func (t *tracker) begin(op Op) ticket {
	t.init()
	t.pending[op]++
	t.issued[op]++
	return ticket{op: op, seq: t.issued[op]}
}

// finish releases the ticket's pending marker and reports whether its outcome
// is current: no outcome with a higher sequence has been applied yet.
func (t *tracker) finish(tk ticket) bool {
	t.init()
	if n := t.pending[tk.op]; n <= 1 {
		delete(t.pending, tk.op)
	} else {
		t.pending[tk.op] = n - 1
	}
	if tk.seq < t.applied[tk.op] {
		return false
	}
	t.applied[tk.op] = tk.seq
	return true
}

// invalidate makes every outcome of op issued so far stale.
func (t *tracker) invalidate(op Op) {
	t.init()
	t.issued[op]++
	t.applied[op] = t.issued[op]
}

func (t *tracker) loading() bool {
	return len(t.pending) > 0
}

func (t *tracker) ops() []Op {
	if len(t.pending) == 0 {
		return nil
	}
	out := make([]Op, 0, len(t.pending))
	for op := range t.pending {
		out = append(out, op)
	}
	slices.Sort(out)
	return out
}

// core is the bookkeeping shared by every store: the lock, the tracker, the
// error message and the collaborators.
type core struct {
	entity string
	opts   Options

	mu    sync.RWMutex
	track tracker
	err   string
}

func (c *core) setup(entity string, opts Options) {
	c.entity = entity
	c.opts = opts.withDefaults()
}

// Loading reports whether any operation is in flight.
func (c *core) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.track.loading()
}

// Err returns the message of the last failed operation, or "".
func (c *core) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// ClearError drops the recorded error message.
func (c *core) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
}

// run executes call as op. While call is in flight op is pending and the
// error is cleared. apply runs under the write lock with call's error; for
// fenced ops it is skipped when a newer outcome of the same op has already
// been applied. run returns call's error either way.
func (c *core) run(op Op, fenced bool, call func() error, apply func(error)) error {
	c.mu.Lock()
	tk := c.track.begin(op)
	c.err = ""
	c.mu.Unlock()

	start := time.Now()
	err := call()

	c.mu.Lock()
	current := c.track.finish(tk) || !fenced
	if current {
		apply(err)
	}
	c.mu.Unlock()

	c.observe(op, outcomeOf(err, current), time.Since(start))
	return err
}

// silent executes call without touching the pending set or the error.
// apply runs under the write lock only on success.
func (c *core) silent(op Op, call func() error, apply func()) error {
	start := time.Now()
	err := call()
	if err == nil {
		c.mu.Lock()
		apply()
		c.mu.Unlock()
	}
	c.observe(op, outcomeOf(err, true), time.Since(start))
	return err
}

// fail records err's user-facing message. Callers hold the write lock.
func (c *core) fail(err error, fallback string) {
	c.err = nixtrack.ErrorMessage(err, fallback)
}

// notify raises the success message, or the failure message derived from err.
// Empty messages are not raised.
func (c *core) notify(err error, success, fallback string) {
	switch {
	case err == nil && success != "":
		c.opts.Notifier.Success(success)
	case err != nil && fallback != "":
		c.opts.Notifier.Error(nixtrack.ErrorMessage(err, fallback))
	}
}

func (c *core) observe(op Op, outcome string, elapsed time.Duration) {
	c.opts.Recorder.Observe(c.entity, string(op), outcome, elapsed)
}

func outcomeOf(err error, current bool) string {
	switch {
	case !current:
		return OutcomeStale
	case err != nil:
		return OutcomeFailure
	}
	return OutcomeSuccess
}
