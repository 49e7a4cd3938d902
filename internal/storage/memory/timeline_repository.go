package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// timelineRepositoryInMemory хранит складские события в памяти.
type timelineRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.StockEvent
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{events: make(map[string][]domain.StockEvent)}
}

// Append добавляет событие в таймлайн товара.
func (r *timelineRepositoryInMemory) Append(event domain.StockEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.ProductName] = append(r.events[event.ProductName], event)

	sort.Slice(r.events[event.ProductName], func(i, j int) bool {
		return r.events[event.ProductName][i].Occurred.Before(r.events[event.ProductName][j].Occurred)
	})

	return nil
}

// List возвращает события товара в хронологическом порядке.
func (r *timelineRepositoryInMemory) List(productName string) ([]domain.StockEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[productName]
	result := make([]domain.StockEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
