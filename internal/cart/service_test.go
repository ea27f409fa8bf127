package cart

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/urbanhaven/storefront/internal/catalog"
	"github.com/urbanhaven/storefront/internal/storage"
	"github.com/urbanhaven/storefront/internal/storage/memory"
)

var (
	productA = catalog.Product{ID: 1, Title: "Canvas Backpack", Category: "bags", Price: 10.00}
	productB = catalog.Product{ID: 2, Title: "Enamel Mug", Category: "kitchen", Price: 5.00}
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store)
	if err := svc.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	return svc, store
}

func TestAddTwiceYieldsOneLineWithQuantityTwo(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	lines := svc.Lines()
	if len(lines) != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("Quantity = %d, want 2", lines[0].Quantity)
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Add(ctx, productB); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	// Re-adding an existing product must not move its line.
	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	lines := svc.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(Lines()) = %d, want 2", len(lines))
	}
	if lines[0].ID != productA.ID || lines[1].ID != productB.ID {
		t.Fatalf("line order = [%d %d], want [%d %d]", lines[0].ID, lines[1].ID, productA.ID, productB.ID)
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	viaSetQuantity, _ := newTestService(t)
	viaRemove, _ := newTestService(t)
	for _, svc := range []*Service{viaSetQuantity, viaRemove} {
		if err := svc.Add(ctx, productA); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := svc.Add(ctx, productB); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	if err := viaSetQuantity.SetQuantity(ctx, productA.ID, 0); err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if err := viaRemove.Remove(ctx, productA.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	got := viaSetQuantity.Lines()
	want := viaRemove.Lines()
	if len(got) != len(want) {
		t.Fatalf("len mismatch: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSetQuantityHasNoUpperBound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.SetQuantity(ctx, productA.ID, 10000); err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if got := svc.Lines()[0].Quantity; got != 10000 {
		t.Fatalf("Quantity = %d, want 10000", got)
	}
}

func TestSetQuantityAbsentLineIsNoop(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.SetQuantity(ctx, 999, 5); err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}

	lines := svc.Lines()
	if len(lines) != 1 || lines[0].ID != productA.ID || lines[0].Quantity != 1 {
		t.Fatalf("Lines() = %+v, want unchanged single line", lines)
	}
}

func TestRemoveAbsentLineIsNoop(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Remove(ctx, 999); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := len(svc.Lines()); got != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	once := svc.Lines()
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	twice := svc.Lines()

	if len(once) != 0 || len(twice) != 0 {
		t.Fatalf("Lines() after clear = %d then %d, want 0 and 0", len(once), len(twice))
	}
}

func TestTotalsRecomputedFromLines(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Add(ctx, productB); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	totals := svc.Totals()
	if math.Abs(totals.Subtotal-25.00) > 1e-9 {
		t.Fatalf("Subtotal = %v, want 25.00", totals.Subtotal)
	}
	if totals.ItemCount != 3 {
		t.Fatalf("ItemCount = %d, want 3", totals.ItemCount)
	}
}

func TestEveryMutationWritesThrough(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	fresh := NewService(store)
	if err := fresh.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	got := fresh.Lines()
	want := svc.Lines()
	if len(got) != len(want) {
		t.Fatalf("hydrated %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHydrateMalformedDataYieldsEmptyCart(t *testing.T) {
	t.Parallel()

	store := memory.New()
	ctx := context.Background()
	if err := store.Save(ctx, storage.KeyCart, []byte("not json{")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	svc := NewService(store)
	if err := svc.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate() error = %v, want nil on malformed data", err)
	}
	if got := len(svc.Lines()); got != 0 {
		t.Fatalf("len(Lines()) = %d, want 0", got)
	}
}

func TestHydrateDropsInvalidLines(t *testing.T) {
	t.Parallel()

	store := memory.New()
	ctx := context.Background()
	stored := []Line{
		{ID: 1, Title: "Canvas Backpack", Price: 10, Quantity: 2},
		{ID: 1, Title: "Canvas Backpack", Price: 10, Quantity: 1},
		{ID: 2, Title: "Enamel Mug", Price: 5, Quantity: 0},
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := store.Save(ctx, storage.KeyCart, payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	svc := NewService(store)
	if err := svc.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	lines := svc.Lines()
	if len(lines) != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", len(lines))
	}
	if lines[0].ID != 1 || lines[0].Quantity != 2 {
		t.Fatalf("Lines()[0] = %+v, want first id-1 line", lines[0])
	}
}

func TestHydrateReplacesInMemoryState(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, productA); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	// Simulate another writer replacing the stored cart.
	if err := store.Save(ctx, storage.KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := svc.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if got := len(svc.Lines()); got != 0 {
		t.Fatalf("len(Lines()) = %d, want 0 after rehydration", got)
	}
}
