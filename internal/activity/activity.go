// Package activity records what happened in the workspace (records created,
// updated, deleted or generated) and fans each event out to live subscribers.
package activity

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

// Event types.
const (
	TypeCreated   = "created"
	TypeUpdated   = "updated"
	TypeDeleted   = "deleted"
	TypeGenerated = "generated"
)

const (
	defaultCapacity   = 50
	subscriberBacklog = 16
)

// Event is one entry of the activity feed.
type Event struct {
	Type      string       `json:"type"`
	Entity    string       `json:"entity"`
	RecordID  classroom.ID `json:"record_id"`
	Name      string       `json:"name,omitempty"`
	TeacherID classroom.ID `json:"teacher_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Logger defines event logging behavior.
type Logger interface {
	Log(event Event) error
}

// NopLogger ignores all events.
type NopLogger struct{}

func (NopLogger) Log(Event) error {
	return nil
}

// Feed keeps the most recent events in a ring buffer and pushes new ones to
// subscribers. A subscriber that falls behind misses events instead of
// blocking the writer.
type Feed struct {
	mu      sync.Mutex
	events  []Event // ring buffer
	next    int
	full    bool
	subs    map[int]chan Event
	nextSub int
	sink    Logger
	now     func() time.Time
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithCapacity sets how many events Recent can return.
func WithCapacity(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.events = make([]Event, n)
		}
	}
}

// WithSink forwards every event to a durable logger as well.
func WithSink(l Logger) FeedOption {
	return func(f *Feed) { f.sink = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) FeedOption {
	return func(f *Feed) { f.now = now }
}

// NewFeed creates an empty feed.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{
		events: make([]Event, defaultCapacity),
		subs:   make(map[int]chan Event),
		sink:   NopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Log records an event. The sink error, if any, is returned after the event has
// already reached the buffer and subscribers.
func (f *Feed) Log(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = f.now()
	}

	f.mu.Lock()
	f.push(event)
	for id, ch := range f.subs {
		select {
		case ch <- event:
		default:
			slog.Debug("activity subscriber lagging, event dropped", "subscriber", id, "type", event.Type)
		}
	}
	sink := f.sink
	f.mu.Unlock()

	if err := sink.Log(event); err != nil {
		return fmt.Errorf("persist activity: %w", err)
	}
	return nil
}

// Preload seeds the buffer with past events, oldest first. Subscribers are not
// notified and the sink is not called.
func (f *Feed) Preload(events []Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range events {
		f.push(e)
	}
}

func (f *Feed) push(event Event) {
	f.events[f.next] = event
	f.next = (f.next + 1) % len(f.events)
	if f.next == 0 {
		f.full = true
	}
}

// Recent returns up to limit events, newest first. A limit of zero or less
// returns everything buffered.
func (f *Feed) Recent(limit int) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.next
	if f.full {
		n = len(f.events)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.events)) % len(f.events)
		out = append(out, f.events[idx])
	}
	return out
}

// Subscribe returns a channel receiving every event logged from now on and a
// function that unsubscribes and closes the channel.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBacklog)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
