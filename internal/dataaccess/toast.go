package dataaccess

import (
	"sort"
	"strings"
	"sync"

	"agency-service/internal/apiclient"
)

type Variant int

const (
	VariantDefault Variant = iota
	VariantDestructive
)

func (v Variant) String() string {
	if v == VariantDestructive {
		return "destructive"
	}
	return "default"
}

type Toast struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier displays toasts. The dashboard prints them; tests record them.
type Notifier interface {
	Notify(t Toast)
}

type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// ToastReporter turns outcomes into toasts. A nil reporter or notifier
// drops them.
type ToastReporter struct {
	notifier Notifier
}

func NewToastReporter(n Notifier) *ToastReporter {
	return &ToastReporter{notifier: n}
}

func (r *ToastReporter) notify(t Toast) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Notify(t)
}

func (r *ToastReporter) Success(title, description string) {
	r.notify(Toast{Title: title, Description: description, Variant: VariantDefault})
}

// Failure shows the server's message, or the generic fallback.
func (r *ToastReporter) Failure(err error) {
	r.notify(Toast{Title: "Error", Description: apiclient.Message(err), Variant: VariantDestructive})
}

// Validation lists field messages in field order.
func (r *ToastReporter) Validation(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = name + ": " + fields[name]
	}
	r.notify(Toast{Title: "Validation error", Description: strings.Join(lines, "; "), Variant: VariantDestructive})
}

// Report toasts a result the presentation layer received.
func Report[T any](r *ToastReporter, res Result[T], successTitle string) {
	if res.IsOk() {
		r.Success(successTitle, "")
		return
	}
	r.Failure(res.Cause())
}

// ToastLog keeps every toast it is given.
type ToastLog struct {
	mu     sync.Mutex
	toasts []Toast
}

func (l *ToastLog) Notify(t Toast) {
	l.mu.Lock()
	l.toasts = append(l.toasts, t)
	l.mu.Unlock()
}

func (l *ToastLog) Toasts() []Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Toast(nil), l.toasts...)
}

func (l *ToastLog) Count(v Variant) int {
	n := 0
	for _, t := range l.Toasts() {
		if t.Variant == v {
			n++
		}
	}
	return n
}
