package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/storeadmin/pkg/models"
	"github.com/example/storeadmin/pkg/orders"
)

// MemoryStore keeps order records in process. It implements both
// orders.Store and orders.ChangeFeed and backs the "memory" store driver.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]models.OrderRecord
	seq    int
	order  map[string]int
	nextID uint64

	subMu   sync.Mutex
	subs    map[int]func(models.ChangeEvent)
	nextSub int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]models.OrderRecord),
		order:  make(map[string]int),
		subs:   make(map[int]func(models.ChangeEvent)),
	}
}

func (s *MemoryStore) InsertOrder(ctx context.Context, rec *models.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.orders[rec.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("order %s already exists", rec.ID)
	}
	header := *rec
	header.Items = nil
	s.orders[rec.ID] = header
	s.seq++
	s.order[rec.ID] = s.seq
	s.mu.Unlock()

	s.publish(models.ChangeEvent{Table: "orders", Op: models.ChangeInsert, ID: rec.ID})
	return nil
}

func (s *MemoryStore) InsertOrderItems(ctx context.Context, items []models.OrderItemRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if _, ok := s.orders[it.OrderID]; !ok {
			return fmt.Errorf("order %s does not exist", it.OrderID)
		}
	}
	for _, it := range items {
		s.nextID++
		it.ID = s.nextID
		rec := s.orders[it.OrderID]
		rec.Items = append(append([]models.OrderItemRecord(nil), rec.Items...), it)
		s.orders[it.OrderID] = rec
	}
	return nil
}

func (s *MemoryStore) UpdateOrder(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	rec, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update order %s: %w", id, orders.ErrNotFound)
	}
	for col, v := range fields {
		if err := setColumn(&rec, col, v); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.orders[id] = rec
	s.mu.Unlock()

	s.publish(models.ChangeEvent{Table: "orders", Op: models.ChangeUpdate, ID: id})
	return nil
}

// ListOrders returns records newest first by created_at, then by insertion.
func (s *MemoryStore) ListOrders(ctx context.Context) ([]models.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]models.OrderRecord, 0, len(s.orders))
	for _, rec := range s.orders {
		rec.Items = append([]models.OrderItemRecord(nil), rec.Items...)
		out = append(out, rec)
	}
	seq := make(map[string]int, len(s.order))
	for k, v := range s.order {
		seq[k] = v
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ci, cj := deref(out[i].CreatedAt), deref(out[j].CreatedAt)
		if ci != cj {
			return ci > cj
		}
		return seq[out[i].ID] > seq[out[j].ID]
	})
	return out, nil
}

// Delete removes an order and its items. Only used by maintenance tooling
// and tests; the admin surface exposes no delete.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.orders[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("delete order %s: %w", id, orders.ErrNotFound)
	}
	delete(s.orders, id)
	delete(s.order, id)
	s.mu.Unlock()

	s.publish(models.ChangeEvent{Table: "orders", Op: models.ChangeDelete, ID: id})
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, handler func(models.ChangeEvent)) (orders.Subscription, error) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = handler
	return &memorySubscription{store: s, id: id}, nil
}

func (s *MemoryStore) publish(evt models.ChangeEvent) {
	s.subMu.Lock()
	handlers := make([]func(models.ChangeEvent), 0, len(s.subs))
	for _, h := range s.subs {
		handlers = append(handlers, h)
	}
	s.subMu.Unlock()
	for _, h := range handlers {
		h(evt)
	}
}

type memorySubscription struct {
	store *MemoryStore
	id    int
}

func (m *memorySubscription) Close() error {
	m.store.subMu.Lock()
	delete(m.store.subs, m.id)
	m.store.subMu.Unlock()
	return nil
}

func setColumn(rec *models.OrderRecord, col string, v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("column %s: unsupported value type %T", col, v)
	}
	switch col {
	case "status":
		rec.Status = &s
	case "updated_at":
		rec.UpdatedAt = &s
	case "tracking_number":
		rec.TrackingNumber = &s
	case "notes":
		rec.Notes = &s
	default:
		return fmt.Errorf("column %s is not updatable", col)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
