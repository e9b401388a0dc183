// Package dialog implements the short-lived form workflows of the
// dashboard: issue a card, schedule an event, assign an agent and import
// students.
package dialog

import (
	"context"
	"errors"
	"sync"

	"agency-service/internal/apiclient"
	"agency-service/internal/dataaccess"
	"agency-service/internal/querycache"
)

type State int

const (
	Closed State = iota
	Idle
	Submitting
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Failed:
		return "error"
	}
	return "closed"
}

var (
	ErrClosed     = errors.New("dialog is closed")
	ErrBusy       = errors.New("dialog is already submitting")
	ErrValidation = errors.New("validation failed")
)

// Workflow drives one dialog: Closed, Open (Idle), Submitting, then Closed
// on success or Failed on error. Submitting again from Failed retries.
type Workflow[In any] struct {
	// OnSuccess lets the parent refresh its own view after the dialog closes.
	OnSuccess func()

	validate func(In) map[string]string
	submit   func(ctx context.Context, in In) error
	keys     []string
	cache    *querycache.Cache
	toasts   *dataaccess.ToastReporter

	mu     sync.Mutex
	state  State
	errMsg string
	fields map[string]string
}

func newWorkflow[In any](store *dataaccess.Store, validate func(In) map[string]string, submit func(context.Context, In) error, keys ...string) *Workflow[In] {
	return &Workflow[In]{
		validate: validate,
		submit:   submit,
		keys:     keys,
		cache:    store.Cache(),
		toasts:   store.Toasts(),
	}
}

func (w *Workflow[In]) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Closed {
		w.state = Idle
		w.errMsg = ""
		w.fields = nil
	}
}

// Close dismisses the dialog unless a submission is in flight.
func (w *Workflow[In]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Submitting {
		w.state = Closed
	}
}

func (w *Workflow[In]) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// InputsDisabled is true while submitting; the form and its submit
// control are read-only then.
func (w *Workflow[In]) InputsDisabled() bool {
	return w.State() == Submitting
}

// Error is the last submission failure, shown in the Failed state.
func (w *Workflow[In]) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// FieldErrors are the inline messages from the last validation.
func (w *Workflow[In]) FieldErrors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields
}

// Submit validates in and, when it passes, performs the call. Invalid input
// raises a validation toast and makes no call.
func (w *Workflow[In]) Submit(ctx context.Context, in In) error {
	w.mu.Lock()
	switch w.state {
	case Closed:
		w.mu.Unlock()
		return ErrClosed
	case Submitting:
		w.mu.Unlock()
		return ErrBusy
	}
	if fields := w.validate(in); len(fields) > 0 {
		w.fields = fields
		w.mu.Unlock()
		w.toasts.Validation(fields)
		return ErrValidation
	}
	w.fields = nil
	w.state = Submitting
	w.mu.Unlock()

	err := w.submit(ctx, in)

	w.mu.Lock()
	if err != nil {
		w.state = Failed
		w.errMsg = apiclient.Message(err)
		w.mu.Unlock()
		return err
	}
	w.state = Closed
	w.errMsg = ""
	w.mu.Unlock()

	if len(w.keys) > 0 {
		w.cache.Invalidate(ctx, w.keys...)
	}
	if w.OnSuccess != nil {
		w.OnSuccess()
	}
	return nil
}

// run adapts a mutation to a workflow submit step.
func run[In, Out any](ctx context.Context, m *dataaccess.Mutation[In, Out], in In) (Out, error) {
	return m.Run(ctx, in).Unwrap()
}
