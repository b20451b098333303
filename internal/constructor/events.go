package constructor

import (
	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/logging"
	"github.com/muurk/giftgrid/internal/session"
	"go.uber.org/zap"
)

// EventKind identifies what an Event carries
type EventKind string

const (
	EventGrid    EventKind = "grid"
	EventSession EventKind = "session"
	EventPulse   EventKind = "pulse"
	EventNotice  EventKind = "notice"
)

// DefaultEventBuffer is the channel size given to subscribers
const DefaultEventBuffer = 64

// NoticeLevel grades a notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a short user-facing message
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Event is one entry of the workspace change feed
type Event struct {
	Kind    EventKind       `json:"type"`
	Change  grid.ChangeKind `json:"change,omitempty"`
	Grid    *grid.Grid      `json:"grid,omitempty"`
	Session *session.View   `json:"session,omitempty"`
	Notice  *Notice         `json:"notice,omitempty"`
}

// Subscribe returns a channel receiving every event published after the
// call, and a function that ends the subscription. A subscriber that falls
// more than buffer events behind misses events.
func (w *Workspace) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	ch := make(chan Event, buffer)

	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	if w.subsClosed {
		close(ch)
		return ch, func() {}
	}
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch

	return ch, func() {
		w.subsMu.Lock()
		defer w.subsMu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
	}
}

func (w *Workspace) publish(ev Event) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for id, ch := range w.subs {
		select {
		case ch <- ev:
		default:
			logging.Warn("Dropping event for slow subscriber",
				zap.String("workspace", w.id),
				zap.Int("subscriber", id),
				zap.String("event", string(ev.Kind)),
			)
		}
	}
}

func (w *Workspace) notify(level NoticeLevel, msg string) {
	w.publish(Event{Kind: EventNotice, Notice: &Notice{Level: level, Message: msg}})
}

// closeSubscribers ends every subscription
func (w *Workspace) closeSubscribers() {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
	w.subsClosed = true
}
