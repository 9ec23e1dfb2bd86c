package ui

import (
	"sync"
	"time"
)

const toastTTL = 5 * time.Second

// Toast is one transient notification.
type Toast struct {
	Message string
	Error   bool
	At      time.Time
}

// Toasts collects store notifications for the footer. It satisfies
// state.Notifier and is safe for concurrent use.
type Toasts struct {
	mu   sync.Mutex
	now  func() time.Time
	last Toast
}

// NewToasts returns an empty toast queue stamped by now.
func NewToasts(now func() time.Time) *Toasts {
	if now == nil {
		now = time.Now
	}
	return &Toasts{now: now}
}

func (t *Toasts) Success(msg string) { t.push(msg, false) }
func (t *Toasts) Error(msg string)   { t.push(msg, true) }

func (t *Toasts) push(msg string, isErr bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = Toast{Message: msg, Error: isErr, At: t.now()}
}

// Current returns the latest toast while it is still fresh.
func (t *Toasts) Current() (Toast, bool) {
	if t == nil {
		return Toast{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.Message == "" || t.now().Sub(t.last.At) > toastTTL {
		return Toast{}, false
	}
	return t.last, true
}
