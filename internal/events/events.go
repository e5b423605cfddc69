package events

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collection names used in change events and audit entries.
const (
	CollectionRoles      = "roles"
	CollectionUsers      = "users"
	CollectionGrants     = "permission_grants"
	CollectionDepartment = "departments"
	CollectionPosition   = "positions"
	CollectionLeaveType  = "leave_types"
)

// ChangeEvent is the create/update/delete notification emitted after a write
// commits. Before and After carry full document snapshots; a nil Before is a
// create, a nil After is a hard delete.
type ChangeEvent struct {
	ID         string
	Collection string
	DocID      uint
	Before     interface{}
	After      interface{}
}

type Handler func(ChangeEvent)

// Bus fans change events out to subscribers. Each delivery runs on its own
// goroutine so a slow or failing subscriber can never slow down or fail the
// triggering write. Wait drains in-flight deliveries for shutdown and tests.
type Bus struct {
	log *zap.SugaredLogger

	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func NewBus(log *zap.SugaredLogger) *Bus {
	return &Bus{
		log:      log,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for one collection's change events.
func (b *Bus) Subscribe(collection string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[collection] = append(b.handlers[collection], h)
}

// SubscribeAll registers a handler for every collection's change events.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[""] = append(b.handlers[""], h)
}

// Publish dispatches ev asynchronously. Panicking subscribers are logged and
// dropped; the publisher never observes subscriber failures.
func (b *Bus) Publish(ev ChangeEvent) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}

	b.mu.RLock()
	handlers := append([]Handler{}, b.handlers[ev.Collection]...)
	handlers = append(handlers, b.handlers[""]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h := h
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Errorw("change event handler panicked",
						"event_id", ev.ID, "collection", ev.Collection, "doc_id", ev.DocID, "panic", r)
				}
			}()
			h(ev)
		}()
	}
}

// Wait blocks until every published event has been handled.
func (b *Bus) Wait() {
	b.wg.Wait()
}
