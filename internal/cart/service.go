package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/urbanhaven/storefront/internal/catalog"
	"github.com/urbanhaven/storefront/internal/storage"
)

// Service owns the in-memory cart and mirrors every mutation to storage
// before returning. A mutex serializes mutations so concurrent handlers get
// the one-mutation-at-a-time guarantee the design assumes.
type Service struct {
	store storage.KV

	mu    sync.Mutex
	lines []Line
}

// NewService returns a cart service backed by the provided store.
// Call Hydrate before accepting mutations.
func NewService(store storage.KV) *Service {
	return &Service{store: store}
}

// Hydrate replaces the in-memory cart wholesale with the persisted one.
// Missing or malformed stored data yields an empty cart and no error: a
// corrupted cart must never take the storefront down.
func (s *Service) Hydrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.store.Load(ctx, storage.KeyCart)
	if err != nil {
		s.lines = nil
		return nil
	}

	var loaded []Line
	if err := json.Unmarshal(payload, &loaded); err != nil {
		s.lines = nil
		return nil
	}
	s.lines = sanitize(loaded)
	return nil
}

// Add increments the quantity of an existing line for the product, or
// appends a new line with quantity 1. The line's position never changes.
func (s *Service) Add(ctx context.Context, product catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == product.ID {
			s.lines[i].Quantity++
			return s.persist(ctx)
		}
	}
	s.lines = append(s.lines, lineFromProduct(product))
	return s.persist(ctx)
}

// Remove deletes the line matching productID. Absent lines are a no-op.
func (s *Service) Remove(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	return s.persist(ctx)
}

// SetQuantity sets the quantity of the line matching productID. A quantity
// of zero or below removes the line instead; no upper bound is enforced.
// Absent lines are a no-op.
func (s *Service) SetQuantity(ctx context.Context, productID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return s.persist(ctx)
	}
	for i := range s.lines {
		if s.lines[i].ID == productID {
			s.lines[i].Quantity = quantity
			break
		}
	}
	return s.persist(ctx)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persist(ctx)
}

// Lines returns a snapshot of the cart in insertion order.
func (s *Service) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Line(nil), s.lines...)
}

// Totals recomputes the derived cart values from the current lines.
func (s *Service) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totals Totals
	for _, line := range s.lines {
		totals.Subtotal += line.Subtotal()
		totals.ItemCount += line.Quantity
	}
	return totals
}

func (s *Service) removeLocked(productID int) {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
}

// persist writes the full cart through to storage. Callers hold s.mu.
func (s *Service) persist(ctx context.Context) error {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.store.Save(ctx, storage.KeyCart, payload); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// sanitize drops lines that violate the cart invariants, such as
// non-positive quantities or duplicate product IDs in hand-edited data.
func sanitize(lines []Line) []Line {
	seen := make(map[int]bool, len(lines))
	kept := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || seen[line.ID] {
			continue
		}
		seen[line.ID] = true
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
