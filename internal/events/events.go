// FilePath: internal/events/events.go
package events

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/models"
)

// MetricIngested is emitted once per successfully persisted measurement
type MetricIngested struct {
	Point      models.MetricPoint `json:"point"`
	Mode       string             `json:"mode"` // sync, async or batch
	OccurredAt time.Time          `json:"occurred_at"`
}

// Publisher is the narrow capability handed to the ingestion service
type Publisher interface {
	Publish(evt MetricIngested)
}

// Bus fans ingestion events out to registered subscribers. Publishing is
// fire-and-forget: a full buffer drops the event with a warning rather than
// blocking the ingestion path.
type Bus struct {
	ch   chan MetricIngested
	quit chan struct{}
	done chan struct{}

	mu   sync.RWMutex
	subs []func(MetricIngested)
}

// NewBus creates a bus and starts its dispatch loop
func NewBus(buffer int) *Bus {
	b := &Bus{
		ch:   make(chan MetricIngested, buffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a listener. Listeners run on the dispatch goroutine,
// in registration order.
func (b *Bus) Subscribe(fn func(MetricIngested)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish hands the event to the dispatch loop without blocking the caller
func (b *Bus) Publish(evt MetricIngested) {
	select {
	case b.ch <- evt:
	default:
		nuts.L.Warnf("[Events] Event buffer full, dropping ingestion event for sensor %s",
			evt.Point.SensorID)
	}
}

// Close stops the dispatch loop after delivering already-buffered events
func (b *Bus) Close() {
	close(b.quit)
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for {
		select {
		case evt := <-b.ch:
			b.deliver(evt)
		case <-b.quit:
			for {
				select {
				case evt := <-b.ch:
					b.deliver(evt)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(evt MetricIngested) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(evt)
	}
}
