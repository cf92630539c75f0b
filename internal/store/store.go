package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/aquamarinepk/aqm"
)

// Store holds the order table for the life of the process. Records are
// loaded once at startup and mutated in place; there is no persistence
// and no deletion. All read-modify-write access goes through the store
// lock so concurrent cancel/refund calls against the same order cannot
// both observe the pre-mutation state.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*Order
	logger aqm.Logger
}

type dataset struct {
	Orders []Order `json:"orders"`
}

func New(logger aqm.Logger) *Store {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Store{
		orders: make(map[string]*Order),
		logger: logger,
	}
}

// Load reads the JSON dataset at path and builds the order table.
// A missing or malformed dataset is an error; callers treat it as fatal.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read dataset %s: %w", path, err)
	}

	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("cannot parse dataset %s: %w", path, err)
	}

	orders := make(map[string]*Order, len(ds.Orders))
	for i := range ds.Orders {
		o := ds.Orders[i]
		if o.OrderID == "" {
			return fmt.Errorf("dataset %s: order at index %d has no order_id", path, i)
		}
		if _, exists := orders[o.OrderID]; exists {
			return fmt.Errorf("dataset %s: duplicate order_id %s", path, o.OrderID)
		}
		orders[o.OrderID] = &o
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	s.logger.Info("order dataset loaded", "path", path, "orders", len(orders))
	return nil
}

// Find returns a copy of the order so callers cannot mutate shared state
// outside the store lock.
func (s *Store) Find(orderID string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Mutate applies fn to the order under the write lock and returns a copy
// of the resulting record. Returns false if the order does not exist.
func (s *Store) Mutate(orderID string, fn func(*Order)) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, false
	}
	fn(o)
	return *o, true
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
