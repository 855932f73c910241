package services

import (
	"context"
	"sort"

	"budget/internal/core"
	"budget/internal/storage"
)

// In-memory stores backing the service tests.

type fakeUserStore struct {
	users map[string]core.User
}

func newFakeUserStore(users ...core.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]core.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) CreateUser(_ context.Context, user core.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetUser(_ context.Context, id string) (*core.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeUserStore) ListUsers(_ context.Context, limit, offset int) ([]core.User, error) {
	var all []core.User
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeUserStore) CountUsers(_ context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *fakeUserStore) UpdateUser(_ context.Context, user core.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

type fakeRoleStore struct {
	roles map[string]core.Role
}

func newFakeRoleStore(roles ...core.Role) *fakeRoleStore {
	s := &fakeRoleStore{roles: make(map[string]core.Role)}
	for _, r := range roles {
		s.roles[r.ID] = r
	}
	return s
}

func (s *fakeRoleStore) GetRoleByName(_ context.Context, name string) (*core.Role, error) {
	for _, r := range s.roles {
		if r.Name == name {
			r := r
			return &r, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeRoleStore) FindRolesByIDs(_ context.Context, ids []string) ([]core.Role, error) {
	var out []core.Role
	for _, id := range ids {
		if r, ok := s.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCategoryStore struct {
	categories map[string]core.Category
}

func newFakeCategoryStore(categories ...core.Category) *fakeCategoryStore {
	s := &fakeCategoryStore{categories: make(map[string]core.Category)}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

func (s *fakeCategoryStore) CreateCategory(_ context.Context, category core.Category) error {
	s.categories[category.ID] = category
	return nil
}

func (s *fakeCategoryStore) GetCategory(_ context.Context, id string) (*core.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (s *fakeCategoryStore) GetCategoryByName(_ context.Context, name string) (*core.Category, error) {
	for _, c := range s.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeCategoryStore) ListCategories(_ context.Context) ([]core.Category, error) {
	var all []core.Category
	for _, c := range s.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (s *fakeCategoryStore) SearchCategories(_ context.Context, _ string) ([]core.Category, error) {
	return s.ListCategories(context.Background())
}

func (s *fakeCategoryStore) UpdateCategory(_ context.Context, category core.Category) error {
	if _, ok := s.categories[category.ID]; !ok {
		return storage.ErrNotFound
	}
	s.categories[category.ID] = category
	return nil
}

func (s *fakeCategoryStore) DeleteCategory(_ context.Context, id string) error {
	if _, ok := s.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

type fakeTransactionStore struct {
	transactions map[string]core.Transaction
	refreshed    []core.Category
}

func newFakeTransactionStore(transactions ...core.Transaction) *fakeTransactionStore {
	s := &fakeTransactionStore{transactions: make(map[string]core.Transaction)}
	for _, t := range transactions {
		s.transactions[t.ID] = t
	}
	return s
}

func (s *fakeTransactionStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.transactions[t.ID] = t
	return nil
}

func (s *fakeTransactionStore) GetTransaction(_ context.Context, id string) (*core.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *fakeTransactionStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if _, ok := s.transactions[t.ID]; !ok {
		return storage.ErrNotFound
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *fakeTransactionStore) DeleteTransaction(_ context.Context, id string) error {
	if _, ok := s.transactions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *fakeTransactionStore) ListTransactionsByUser(_ context.Context, userID string, _ storage.TransactionFilter, limit, offset int) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *fakeTransactionStore) ListAllTransactions(_ context.Context, _ storage.TransactionFilter, limit, offset int) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *fakeTransactionStore) FindAllTransactionsForUser(_ context.Context, userID string) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) CountTransactionsByUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, t := range s.transactions {
		if t.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeTransactionStore) RefreshCategoryDenorm(_ context.Context, category core.Category) error {
	s.refreshed = append(s.refreshed, category)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishTransactionEvent(_ context.Context, transactionID string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, transactionID)
	return nil
}
