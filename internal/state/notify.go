package state

import (
	"log"
	"time"
)

// Notifier surfaces transient user-facing messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Recorder observes every terminal outcome of a store operation.
type Recorder interface {
	Observe(entity, op, outcome string, elapsed time.Duration)
}

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Printf("ok: %s", msg) }
func (LogNotifier) Error(msg string)   { log.Printf("error: %s", msg) }

type nopRecorder struct{}

func (nopRecorder) Observe(string, string, string, time.Duration) {}

// Options carries the collaborators shared by every store.
type Options struct {
	Notifier Notifier
	Recorder Recorder
	// Now stamps dashboard updates. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Notifier == nil {
		o.Notifier = LogNotifier{}
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
