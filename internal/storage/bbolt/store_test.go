package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/urbanhaven/storefront/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "storefront.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("   "); err == nil {
		t.Fatalf("Open(blank) expected error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	payload := []byte(`[{"id":1,"quantity":2}]`)
	if err := store.Save(ctx, storage.KeyCart, payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx, storage.KeyCart)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(loaded) != string(payload) {
		t.Fatalf("Load() = %q, want %q", loaded, payload)
	}
}

func TestLoadMissingKeyReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	_, err := store.Load(context.Background(), storage.KeySession)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestSaveReplacesPreviousValue(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, storage.KeyLocale, []byte(`"en-US"`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, storage.KeyLocale, []byte(`"ar"`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx, storage.KeyLocale)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(loaded) != `"ar"` {
		t.Fatalf("Load() = %q, want %q", loaded, `"ar"`)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, storage.KeySession, []byte(`{}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, storage.KeySession); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, storage.KeySession); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if err := store.Delete(context.Background(), storage.KeyCart); err != nil {
		t.Fatalf("Delete(absent) error = %v", err)
	}
}

func TestCanceledContextIsRejected(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Load(ctx, storage.KeyCart); err == nil {
		t.Fatalf("Load() with canceled context expected error")
	}
	if err := store.Save(ctx, storage.KeyCart, nil); err == nil {
		t.Fatalf("Save() with canceled context expected error")
	}
}
