package call

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/chatlite/callkit/internal/log"
	isync "github.com/chatlite/callkit/internal/sync"
)

// Bridge fans session events out to subscribers. Each subscriber gets its
// own goroutine and bounded buffer, so a slow handler never blocks the
// state machine; when a buffer is full the oldest event is dropped.
type Bridge struct {
	logger  *log.Logger
	bufSize int
	subs    *isync.Map[string, *subscriber]
	closed  atomic.Bool
}

type subscriber struct {
	id   string
	ch   chan Event
	stop chan struct{}
	once sync.Once
}

func newBridge(logger *log.Logger, bufSize int) *Bridge {
	return &Bridge{
		logger:  logger,
		bufSize: bufSize,
		subs:    isync.NewMap[string, *subscriber](),
	}
}

// Subscribe registers h for events. The returned unsubscribe is safe to
// call multiple times. Subscribing to a closed bridge is a no-op.
func (b *Bridge) Subscribe(h Handler) func() {
	if b.closed.Load() {
		return func() {}
	}

	sub := &subscriber{
		id:   uuid.NewString(),
		ch:   make(chan Event, b.bufSize),
		stop: make(chan struct{}),
	}
	b.subs.Store(sub.id, sub)

	// a Close racing with the store above may have missed this entry
	if b.closed.Load() {
		b.remove(sub)
		return func() {}
	}
	go sub.run(h)

	return func() { b.remove(sub) }
}

// Publish delivers ev to every subscriber without blocking.
func (b *Bridge) Publish(ev Event) {
	b.subs.Range(func(_ string, sub *subscriber) bool {
		for {
			select {
			case sub.ch <- ev:
				return true
			default:
			}
			select {
			case old := <-sub.ch:
				observerDropped.Add(context.Background(), 1)
				b.logger.Warn("subscriber too slow, dropping oldest event",
					log.String("subscriberId", sub.id),
					log.String("kind", old.Kind.String()),
				)
			default:
			}
		}
	})
}

// Close tears down every subscription. Further publishes are silent and
// further subscribes are no-ops.
func (b *Bridge) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.subs.Range(func(_ string, sub *subscriber) bool {
		b.remove(sub)
		return true
	})
}

func (b *Bridge) remove(sub *subscriber) {
	sub.once.Do(func() {
		b.subs.Delete(sub.id)
		close(sub.stop)
	})
}

func (sub *subscriber) run(h Handler) {
	for {
		select {
		case <-sub.stop:
			return
		case ev := <-sub.ch:
			h(ev)
		}
	}
}
