// Package events is an in-process publish/subscribe bus. Delivery is
// synchronous and in subscription order; a failing handler never affects the
// emitter or the handlers after it.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/metrics"
)

// Event is anything published on the bus.
type Event interface {
	EventName() string
}

// DocumentUploaded is emitted after a project document or attachment row is
// stored.
type DocumentUploaded struct {
	Ref document.Ref
}

// DocumentIndexed is emitted after an index upsert commits.
type DocumentIndexed struct {
	Ref       document.Ref
	BodyChars int
}

// MediaTranscribed is emitted when a media item receives its transcript.
type MediaTranscribed struct {
	Ref document.Ref
}

// BackfillCompleted is emitted at the end of every batch index run.
type BackfillCompleted struct {
	RunID     string
	Kind      string
	Processed int
	NonEmpty  int
	Failed    int
}

// EntitiesRebuilt is emitted after a successful entity rebuild.
type EntitiesRebuilt struct {
	Entities int
	Mentions int
}

func (DocumentUploaded) EventName() string  { return "document.uploaded" }
func (DocumentIndexed) EventName() string   { return "document.indexed" }
func (MediaTranscribed) EventName() string  { return "media.transcribed" }
func (BackfillCompleted) EventName() string { return "index.backfill_completed" }
func (EntitiesRebuilt) EventName() string   { return "entities.rebuilt" }

// Handler receives one event.
type Handler func(ctx context.Context, e Event) error

// Bus routes events to handlers by name. The zero value is not usable; a nil
// *Bus silently drops events.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// On registers h for events named name.
func (b *Bus) On(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Subscribe registers a handler typed to one event struct.
func Subscribe[E Event](b *Bus, fn func(ctx context.Context, e E) error) {
	var zero E
	b.On(zero.EventName(), func(ctx context.Context, e Event) error {
		typed, ok := e.(E)
		if !ok {
			return fmt.Errorf("event %s: unexpected payload %T", e.EventName(), e)
		}
		return fn(ctx, typed)
	})
}

// Emit delivers e to every handler registered for its name, in order. It
// returns the number of handlers that failed.
func (b *Bus) Emit(ctx context.Context, e Event) int {
	if b == nil {
		return 0
	}
	name := e.EventName()
	log.Info("event", "name", name, "payload", fmt.Sprintf("%+v", e))

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	failed := 0
	for i, h := range handlers {
		if err := safeCall(ctx, h, e); err != nil {
			failed++
			metrics.EventHandlerFailures.WithLabelValues(name).Inc()
			log.Error("event handler failed", "name", name, "handler", i, "err", err)
		}
	}
	return failed
}

func safeCall(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, e)
}
