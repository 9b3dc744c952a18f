package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
)

// OrderStore is an in-memory order store with monotonically increasing ids.
type OrderStore struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]order.Order
	now    func() time.Time
}

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		nextID: 1,
		orders: make(map[int64]order.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of the order and assigns its id.
func (s *OrderStore) Create(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o = o.Clone()
	o.ID = s.nextID
	s.nextID++
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	o.Recalculate()
	s.orders[o.ID] = o

	return o.Clone(), nil
}

// FindByID returns a copy of the order, deleted or not.
func (s *OrderStore) FindByID(_ context.Context, id int64) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}

	return o.Clone(), nil
}

// ListByClient returns a page of the client's live orders, newest first.
func (s *OrderStore) ListByClient(_ context.Context, query order.QueryOrdersModel) (order.Page, error) {
	query = query.Normalize()

	s.mu.RLock()
	matched := make([]order.Order, 0)
	for _, o := range s.orders {
		if o.ClientID == query.ClientID && !o.IsDeleted {
			matched = append(matched, o.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}

		return matched[i].ID > matched[j].ID
	})

	page := order.Page{
		Orders:   []order.Order{},
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    int64(len(matched)),
	}
	start := query.Offset()
	if start < len(matched) {
		end := min(start+query.Limit(), len(matched))
		page.Orders = matched[start:end]
	}

	return page, nil
}

// SoftDelete marks the order deleted; repeated calls are no-ops.
func (s *OrderStore) SoftDelete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return false, order.ErrOrderNotFound
	}
	if o.IsDeleted {
		return false, nil
	}
	o.IsDeleted = true
	o.UpdatedAt = s.now()
	s.orders[id] = o

	return true, nil
}
