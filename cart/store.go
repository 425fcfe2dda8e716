package cart

import (
	"sync"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/models"
)

// Observer is invoked synchronously after every successful mutation.
type Observer func()

// Store is an in-memory shopping cart: an insertion-ordered list of
// product lines with at most one line per product ID. Every line
// satisfies 1 <= quantity <= product stock at all times; mutations
// that would violate the ceiling are rejected and leave the cart
// unchanged.
type Store struct {
	mu        sync.RWMutex
	lines     []models.CartLine
	observers map[int]Observer
	nextObsID int
}

// NewStore creates an empty cart.
func NewStore() *Store {
	return &Store{
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer and returns an unsubscribe handle.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify must be called without the lock held.
func (s *Store) notify() {
	s.mu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}

func (s *Store) indexOf(productID string) int {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into an existing line for the product or appends
// a new one. The stock ceiling is enforced on both paths: if the final
// quantity would exceed product stock, the cart is left unchanged and
// ErrStockExceeded is returned. A merge replaces the stored product
// snapshot with the caller's, so price and stock always reflect the
// latest fetch and IncreaseQuantity enforces the same ceiling Add did.
func (s *Store) Add(product models.Product, quantity int) error {
	if quantity < 1 {
		return apperrors.ErrInvalidQuantity
	}

	s.mu.Lock()
	i := s.indexOf(product.ID)
	current := 0
	if i >= 0 {
		current = s.lines[i].Quantity
	}
	if current+quantity > product.Stock {
		s.mu.Unlock()
		return apperrors.ErrStockExceeded
	}
	if i >= 0 {
		s.lines[i].Product = product
		s.lines[i].Quantity = current + quantity
	} else {
		s.lines = append(s.lines, models.CartLine{Product: product, Quantity: quantity})
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// IncreaseQuantity bumps the matching line by one, stock permitting.
func (s *Store) IncreaseQuantity(productID string) error {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrLineNotFound
	}
	if s.lines[i].Quantity+1 > s.lines[i].Product.Stock {
		s.mu.Unlock()
		return apperrors.ErrStockExceeded
	}
	s.lines[i].Quantity++
	s.mu.Unlock()

	s.notify()
	return nil
}

// DecreaseQuantity lowers the matching line by one; a line reaching
// zero is removed from the cart.
func (s *Store) DecreaseQuantity(productID string) error {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrLineNotFound
	}
	s.lines[i].Quantity--
	if s.lines[i].Quantity < 1 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove deletes the line for the product; no-op if absent.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.mu.Unlock()

	s.notify()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.notify()
}

// Items returns a snapshot of the lines in insertion order.
func (s *Store) Items() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.CartLine, len(s.lines))
	copy(items, s.lines)
	return items
}

// Len returns the number of lines in the cart.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Total recomputes the cart total from current state on every call.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}
