// Package memstore provides a session-scoped service.Store held entirely in memory.
// Each Store is an explicit instance with its own lifecycle; nothing is shared between instances.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
)

var _ service.Store = (*Store)(nil)

type allocationKey struct {
	month      model.Month
	categoryID int64
}

// Store is an in-memory implementation of service.Store.
type Store struct {
	now          func() time.Time
	transactions map[int64]model.Transaction
	categories   map[int64]model.Category
	groups       map[int64]model.CategoryGroup
	allocations  map[allocationKey]model.Sats
	nextTxnID    int64
	nextCatID    int64
	nextGroupID  int64
	mu           sync.RWMutex
	closed       bool
}

// New returns an empty, open store.
func New() *Store {
	return &Store{
		now:          time.Now,
		transactions: make(map[int64]model.Transaction),
		categories:   make(map[int64]model.Category),
		groups:       make(map[int64]model.CategoryGroup),
		allocations:  make(map[allocationKey]model.Sats),
	}
}

// Close releases the store's data. Every later call returns common.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.transactions = nil
	s.categories = nil
	s.groups = nil
	s.allocations = nil
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s.closed {
		return common.ErrStoreClosed
	}
	return ctx.Err()
}

// InsertIncome records income for the given date and returns its id.
func (s *Store) InsertIncome(ctx context.Context, amount model.Sats, description string, date time.Time) (int64, error) {
	return s.insert(ctx, model.Transaction{
		Date:        model.Day(date),
		Description: strings.TrimSpace(description),
		Kind:        model.KindIncome,
		Amount:      amount,
	})
}

// InsertExpense records spending against a category and returns its id.
func (s *Store) InsertExpense(ctx context.Context, amount model.Sats, description string, categoryID int64, date time.Time) (int64, error) {
	return s.insert(ctx, model.Transaction{
		Date:        model.Day(date),
		Description: strings.TrimSpace(description),
		Kind:        model.KindExpense,
		CategoryID:  &categoryID,
		Amount:      amount,
	})
}

func (s *Store) insert(ctx context.Context, txn model.Transaction) (int64, error) {
	if err := txn.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if txn.CategoryID != nil {
		if _, ok := s.categories[*txn.CategoryID]; !ok {
			return 0, fmt.Errorf("%w: category %d", common.ErrNotFound, *txn.CategoryID)
		}
	}

	s.nextTxnID++
	txn.ID = s.nextTxnID
	txn.CreatedAt = s.now()
	s.transactions[txn.ID] = txn

	slog.Debug("recorded transaction", "id", txn.ID, "kind", txn.Kind, "amount", int64(txn.Amount))
	return txn.ID, nil
}

// UpdateTransaction replaces the stored fields of txn.ID. It reports false when no such transaction exists.
func (s *Store) UpdateTransaction(ctx context.Context, txn model.Transaction) (bool, error) {
	txn.Description = strings.TrimSpace(txn.Description)
	txn.Date = model.Day(txn.Date)
	if err := txn.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if txn.CategoryID != nil {
		if _, ok := s.categories[*txn.CategoryID]; !ok {
			return false, fmt.Errorf("%w: category %d", common.ErrNotFound, *txn.CategoryID)
		}
	}

	existing, ok := s.transactions[txn.ID]
	if !ok {
		return false, nil
	}
	txn.CreatedAt = existing.CreatedAt
	txn.CategoryName = ""
	s.transactions[txn.ID] = txn
	return true, nil
}

// DeleteTransaction removes a transaction. It reports false when the id was unknown.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	if _, ok := s.transactions[id]; !ok {
		return false, nil
	}
	delete(s.transactions, id)
	return true, nil
}

// QueryTransactions returns transactions matching filter, newest first.
func (s *Store) QueryTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var start, end time.Time
	if filter.Start != nil {
		start = model.Day(*filter.Start)
	}
	if filter.End != nil {
		end = model.Day(*filter.End)
	}
	if filter.Start != nil && filter.End != nil && end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			end.Format(model.DateLayout), start.Format(model.DateLayout))
	}

	var out []model.Transaction
	for _, txn := range s.transactions {
		if filter.Start != nil && txn.Date.Before(start) {
			continue
		}
		if filter.End != nil && txn.Date.After(end) {
			continue
		}
		if filter.CategoryID != nil && (txn.CategoryID == nil || *txn.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Kind != nil && txn.Kind != *filter.Kind {
			continue
		}
		if txn.CategoryID != nil {
			txn.CategoryName = s.categories[*txn.CategoryID].Name
		}
		out = append(out, txn)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// InsertCategory creates a new envelope and returns its id.
func (s *Store) InsertCategory(ctx context.Context, name string) (int64, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if s.categoryNamed(name, 0) {
		return 0, fmt.Errorf("%w: category %q", common.ErrDuplicateName, name)
	}

	s.nextCatID++
	s.categories[s.nextCatID] = model.Category{ID: s.nextCatID, Name: name, CreatedAt: s.now()}
	return s.nextCatID, nil
}

// GetCategory returns a category by id, or common.ErrNotFound.
func (s *Store) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	cat, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	cat = s.withGroupName(cat)
	return &cat, nil
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	cats := make([]model.Category, 0, len(s.categories))
	for _, cat := range s.categories {
		cats = append(cats, s.withGroupName(cat))
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

// RenameCategory changes a category's name. It reports false when the id was unknown.
func (s *Store) RenameCategory(ctx context.Context, id int64, name string) (bool, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	cat, ok := s.categories[id]
	if !ok {
		return false, nil
	}
	if s.categoryNamed(name, id) {
		return false, fmt.Errorf("%w: category %q", common.ErrDuplicateName, name)
	}
	cat.Name = name
	s.categories[id] = cat
	return true, nil
}

// DeleteCategory removes a category together with its transactions and allocations.
func (s *Store) DeleteCategory(ctx context.Context, id int64) (model.CategoryDeletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.CategoryDeletion{}, err
	}

	var result model.CategoryDeletion
	for txnID, txn := range s.transactions {
		if txn.CategoryID != nil && *txn.CategoryID == id {
			delete(s.transactions, txnID)
			result.Transactions++
		}
	}
	for key := range s.allocations {
		if key.categoryID == id {
			delete(s.allocations, key)
			result.Allocations++
		}
	}
	if _, ok := s.categories[id]; ok {
		delete(s.categories, id)
		result.Deleted = true
	}
	return result, nil
}

// InsertGroup creates a category group. New groups sort after existing ones.
func (s *Store) InsertGroup(ctx context.Context, name string) (int64, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	order := 0
	for _, g := range s.groups {
		if g.Name == name {
			return 0, fmt.Errorf("%w: group %q", common.ErrDuplicateName, name)
		}
		if g.SortOrder >= order {
			order = g.SortOrder + 1
		}
	}

	s.nextGroupID++
	s.groups[s.nextGroupID] = model.CategoryGroup{
		ID:        s.nextGroupID,
		Name:      name,
		SortOrder: order,
		CreatedAt: s.now(),
	}
	return s.nextGroupID, nil
}

// ListGroups returns groups in display order.
func (s *Store) ListGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	groups := make([]model.CategoryGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SortOrder != groups[j].SortOrder {
			return groups[i].SortOrder < groups[j].SortOrder
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

// RenameGroup changes a group's name. It reports false when the id was unknown.
func (s *Store) RenameGroup(ctx context.Context, id int64, name string) (bool, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	g, ok := s.groups[id]
	if !ok {
		return false, nil
	}
	for otherID, other := range s.groups {
		if otherID != id && other.Name == name {
			return false, fmt.Errorf("%w: group %q", common.ErrDuplicateName, name)
		}
	}
	g.Name = name
	s.groups[id] = g
	return true, nil
}

// AssignCategoryGroup moves a category into a group, or out of any group when groupID is nil.
func (s *Store) AssignCategoryGroup(ctx context.Context, categoryID int64, groupID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	cat, ok := s.categories[categoryID]
	if !ok {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, categoryID)
	}
	if groupID != nil {
		if _, ok := s.groups[*groupID]; !ok {
			return fmt.Errorf("%w: group %d", common.ErrNotFound, *groupID)
		}
		cat.GroupID = model.Int64Ptr(*groupID)
	} else {
		cat.GroupID = nil
	}
	s.categories[categoryID] = cat
	return nil
}

// UpsertAllocation sets the amount assigned to a category for a month, replacing any previous value.
func (s *Store) UpsertAllocation(ctx context.Context, categoryID int64, month model.Month, amount model.Sats) error {
	alloc := model.Allocation{CategoryID: categoryID, Month: month, Amount: amount}
	if err := alloc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.categories[categoryID]; !ok {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, categoryID)
	}
	s.allocations[allocationKey{month: month, categoryID: categoryID}] = amount
	return nil
}

// DeleteAllocation removes an allocation. It reports false when none existed.
func (s *Store) DeleteAllocation(ctx context.Context, categoryID int64, month model.Month) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	key := allocationKey{month: month, categoryID: categoryID}
	if _, ok := s.allocations[key]; !ok {
		return false, nil
	}
	delete(s.allocations, key)
	return true, nil
}

// QueryAllocation returns the allocation for a category and month, and whether one exists.
func (s *Store) QueryAllocation(ctx context.Context, categoryID int64, month model.Month) (model.Sats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return 0, false, err
	}
	amount, ok := s.allocations[allocationKey{month: month, categoryID: categoryID}]
	return amount, ok, nil
}

// QueryAllocations returns every allocation for a month ordered by category id.
func (s *Store) QueryAllocations(ctx context.Context, month model.Month) ([]model.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var out []model.Allocation
	for key, amount := range s.allocations {
		if key.month == month {
			out = append(out, model.Allocation{Month: month, CategoryID: key.categoryID, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (s *Store) categoryNamed(name string, except int64) bool {
	for id, cat := range s.categories {
		if id != except && cat.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) withGroupName(cat model.Category) model.Category {
	if cat.GroupID != nil {
		cat.GroupName = s.groups[*cat.GroupID].Name
	}
	return cat
}
