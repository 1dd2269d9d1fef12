package testutil

import (
	"bytes"
	"context"
	"sync"

	"github.com/roach88/varstate/internal/variable"
)

// NotificationKind tells creates and updates apart.
type NotificationKind string

const (
	KindCreate NotificationKind = "create"
	KindUpdate NotificationKind = "update"
)

// Notification is a recorded listener call. Name and Value are copies, so
// they stay valid after the store is called again.
type Notification struct {
	Kind  NotificationKind
	Event variable.Event
}

// RecordingListener records every notification it receives.
//
// Set Err to make the listener fail; the error is returned after the
// notification has been recorded.
type RecordingListener struct {
	mu    sync.Mutex
	calls []Notification
	Err   error
}

// NewRecordingListener creates an empty recorder.
func NewRecordingListener() *RecordingListener {
	return &RecordingListener{}
}

// OnCreate implements variable.Listener.
func (l *RecordingListener) OnCreate(_ context.Context, ev variable.Event) error {
	return l.record(KindCreate, ev)
}

// OnUpdate implements variable.Listener.
func (l *RecordingListener) OnUpdate(_ context.Context, ev variable.Event) error {
	return l.record(KindUpdate, ev)
}

func (l *RecordingListener) record(kind NotificationKind, ev variable.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev.Name = bytes.Clone(ev.Name)
	ev.Value = bytes.Clone(ev.Value)
	l.calls = append(l.calls, Notification{Kind: kind, Event: ev})
	return l.Err
}

// Notifications returns a copy of the recorded notifications in call order.
func (l *RecordingListener) Notifications() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.calls))
	copy(out, l.calls)
	return out
}

// Count returns the number of recorded notifications of kind, or of all
// kinds when kind is empty.
func (l *RecordingListener) Count(kind NotificationKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if kind == "" {
		return len(l.calls)
	}
	n := 0
	for _, c := range l.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets all recorded notifications.
func (l *RecordingListener) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}
