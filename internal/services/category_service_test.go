package services

import (
	"context"
	"errors"
	"testing"

	"budget/internal/core"
)

func TestCategoryCreate(t *testing.T) {
	store := newFakeCategoryStore()
	svc := NewCategoryService(store, newFakeTransactionStore())

	category, err := svc.Create(context.Background(), CategoryInput{
		Name:  "Groceries",
		Color: "#00ff00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if category.ID == "" {
		t.Error("missing generated ID")
	}

	if _, err := svc.Create(context.Background(), CategoryInput{Name: "Groceries"}); !errors.Is(err, ErrCategoryNameTaken) {
		t.Errorf("duplicate name error = %v, want ErrCategoryNameTaken", err)
	}

	if _, err := svc.Create(context.Background(), CategoryInput{Name: "x"}); !errors.Is(err, core.ErrCategoryNameSize) {
		t.Errorf("short name error = %v, want ErrCategoryNameSize", err)
	}
}

func TestCategoryGet_Caches(t *testing.T) {
	store := newFakeCategoryStore(core.Category{ID: "c1", Name: "Food"})
	svc := NewCategoryService(store, newFakeTransactionStore())
	ctx := context.Background()

	first, err := svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Mutate the store behind the cache; the cached copy is served.
	delete(store.categories, "c1")
	second, err := svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if second.Name != first.Name {
		t.Errorf("cached name = %q, want %q", second.Name, first.Name)
	}
}

func TestCategoryUpdate_RefreshesDenorm(t *testing.T) {
	store := newFakeCategoryStore(core.Category{ID: "c1", Name: "Food", Color: "#111111"})
	transactions := newFakeTransactionStore()
	svc := NewCategoryService(store, transactions)

	updated, err := svc.Update(context.Background(), "c1", CategoryInput{
		Name:  "Dining",
		Color: "#222222",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Dining" {
		t.Errorf("name = %q, want Dining", updated.Name)
	}

	if len(transactions.refreshed) != 1 || transactions.refreshed[0].Name != "Dining" {
		t.Errorf("denorm refresh = %+v, want one Dining entry", transactions.refreshed)
	}

	// The stale cache entry must not survive the rename.
	got, err := svc.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Name != "Dining" {
		t.Errorf("post-update name = %q, want Dining", got.Name)
	}
}

func TestCategoryDelete_Invalidates(t *testing.T) {
	store := newFakeCategoryStore(core.Category{ID: "c1", Name: "Food"})
	svc := NewCategoryService(store, newFakeTransactionStore())
	ctx := context.Background()

	if _, err := svc.Get(ctx, "c1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := svc.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "c1"); err == nil {
		t.Error("deleted category still served from cache")
	}
}
