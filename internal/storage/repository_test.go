package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testUser(username string) core.User {
	now := time.Now().UTC().Truncate(time.Second)
	return core.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$2a$10$hash",
		Email:        username + "@example.com",
		Active:       true,
		RoleIDs:      []string{"role-1"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testTransaction(userID string, cents int64, date time.Time) core.Transaction {
	now := time.Now().UTC().Truncate(time.Second)
	return core.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		UserUsername: "alice",
		CategoryID:   "cat-1",
		CategoryName: "Food",
		Amount:       core.Money{Cents: cents},
		Description:  "test",
		Date:         date,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user := testUser("alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != user.ID || got.Email != user.Email || !got.Active {
		t.Errorf("got user %+v, want %+v", got, user)
	}
	if len(got.RoleIDs) != 1 || got.RoleIDs[0] != "role-1" {
		t.Errorf("role IDs = %v, want [role-1]", got.RoleIDs)
	}

	got.Active = false
	got.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateUser(ctx, *got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	reloaded, err := repo.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if reloaded.Active {
		t.Error("deactivation not persisted")
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestRoleLookup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	role := core.Role{
		ID:              uuid.NewString(),
		Name:            "ADMIN",
		CapabilityNames: []string{"MANAGE_USERS", "MANAGE_ROLES"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repo.CreateRole(ctx, role); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	roles, err := repo.FindRolesByIDs(ctx, []string{role.ID, "missing"})
	if err != nil {
		t.Fatalf("FindRolesByIDs: %v", err)
	}
	if len(roles) != 1 {
		t.Fatalf("got %d roles, want 1", len(roles))
	}
	if roles[0].Name != "ADMIN" || len(roles[0].CapabilityNames) != 2 {
		t.Errorf("got role %+v", roles[0])
	}

	roles, err = repo.FindRolesByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("FindRolesByIDs(nil): %v", err)
	}
	if len(roles) != 0 {
		t.Errorf("got %d roles for empty id set, want 0", len(roles))
	}
}

func TestSeedDefaultRoles(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SeedDefaultRoles(ctx); err != nil {
		t.Fatalf("SeedDefaultRoles: %v", err)
	}
	// Second run must not duplicate.
	if err := repo.SeedDefaultRoles(ctx); err != nil {
		t.Fatalf("SeedDefaultRoles (second run): %v", err)
	}

	count, err := repo.CountRoles(ctx)
	if err != nil {
		t.Fatalf("CountRoles: %v", err)
	}
	if count != 2 {
		t.Errorf("role count = %d, want 2", count)
	}

	admin, err := repo.GetRoleByName(ctx, "ADMIN")
	if err != nil {
		t.Fatalf("GetRoleByName: %v", err)
	}
	if len(admin.CapabilityNames) != 6 {
		t.Errorf("ADMIN capabilities = %v, want 6 entries", admin.CapabilityNames)
	}
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	category := core.Category{
		ID:        uuid.NewString(),
		Name:      "Groceries",
		Color:     "#00ff00",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	found, err := repo.SearchCategories(ctx, "groc")
	if err != nil {
		t.Fatalf("SearchCategories: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Groceries" {
		t.Errorf("search results = %+v, want Groceries", found)
	}

	category.Color = "#ff0000"
	category.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateCategory(ctx, category); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}

	if err := repo.DeleteCategory(ctx, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := repo.DeleteCategory(ctx, category.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	userID := uuid.NewString()
	older := testTransaction(userID, -5000, core.NewDate(2024, time.January, 10))
	newer := testTransaction(userID, 100000, core.NewDate(2024, time.February, 1))
	other := testTransaction(uuid.NewString(), -3000, core.NewDate(2024, time.February, 2))

	for _, tx := range []core.Transaction{older, newer, other} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	list, err := repo.ListTransactionsByUser(ctx, userID, TransactionFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d transactions, want 2", len(list))
	}
	if list[0].ID != newer.ID {
		t.Errorf("first transaction = %s, want newest %s", list[0].ID, newer.ID)
	}

	filtered, err := repo.ListTransactionsByUser(ctx, userID, TransactionFilter{
		From: core.NewDate(2024, time.February, 1),
	}, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByUser(filter): %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != newer.ID {
		t.Errorf("filtered = %+v, want only the February transaction", filtered)
	}

	all, err := repo.FindAllTransactionsForUser(ctx, userID)
	if err != nil {
		t.Fatalf("FindAllTransactionsForUser: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d transactions for user, want 2", len(all))
	}

	count, err := repo.CountTransactionsByUser(ctx, userID)
	if err != nil || count != 2 {
		t.Errorf("CountTransactionsByUser = %d, %v, want 2", count, err)
	}

	if err := repo.DeleteTransaction(ctx, older.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted transaction error = %v, want ErrNotFound", err)
	}
}

func TestPendingExportFlow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	userID := uuid.NewString()
	first := testTransaction(userID, -1000, core.NewDate(2024, time.March, 1))
	second := testTransaction(userID, -2000, core.NewDate(2024, time.March, 2))
	second.CreatedAt = first.CreatedAt.Add(time.Minute)

	if err := repo.CreateTransaction(ctx, first); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := repo.CreateTransaction(ctx, second); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pending, err := repo.GetPendingExportTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingExportTransactions: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Errorf("pending order = %s first, want oldest %s", pending[0].ID, first.ID)
	}

	if err := repo.MarkExported(ctx, first.ID); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	pending, err = repo.GetPendingExportTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingExportTransactions: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("pending after export = %+v, want only second", pending)
	}

	// An update reopens the export flag.
	second.Description = "edited"
	second.UpdatedAt = time.Now().UTC()
	if err := repo.MarkExported(ctx, second.ID); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	if err := repo.UpdateTransaction(ctx, second); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, err = repo.GetPendingExportTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingExportTransactions: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("updated transaction not back in pending set: %+v", pending)
	}
}

func TestRefreshCategoryDenorm(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tx := testTransaction(uuid.NewString(), -1000, core.NewDate(2024, time.March, 1))
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := repo.RefreshCategoryDenorm(ctx, core.Category{
		ID:    "cat-1",
		Name:  "Renamed",
		Color: "#123456",
	}); err != nil {
		t.Fatalf("RefreshCategoryDenorm: %v", err)
	}

	got, err := repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.CategoryName != "Renamed" || got.CategoryColor != "#123456" {
		t.Errorf("denormalized fields = %q/%q, want Renamed/#123456", got.CategoryName, got.CategoryColor)
	}
}
