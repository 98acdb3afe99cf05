package branch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/sanitizer"
	"github.com/vrakshhq/vraksh/pkg/validator"
)

// Service implements branch and item management on top of a Store. All
// mutating operations are scoped to the owning user.
type Service struct {
	storage Store
	logger  *slog.Logger
}

type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a branch service.
func NewService(storage Store, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a new branch.
type CreateParams struct {
	Name        string
	Description string
}

// Create claims a branch name for the user. The name is the public URL
// segment and shares the username character rules.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Branch, error) {
	name := sanitizer.NormalizeUsername(params.Name)
	if err := validator.Apply(validator.ValidUsername("name", name)); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &Branch{
		UserID:      userID,
		Name:        name,
		Description: params.Description,
		Items:       []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.CreateBranch(ctx, b); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	s.logger.Info("branch created",
		logger.UserID(userID),
		logger.BranchID(b.ID),
		logger.Component("branch"),
	)
	return b, nil
}

// List returns all branches owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]Branch, error) {
	branches, err := s.storage.ListBranchesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

// Get returns a branch owned by the user.
func (s *Service) Get(ctx context.Context, userID, branchID string) (*Branch, error) {
	return s.ownedBranch(ctx, userID, branchID)
}

// Update applies a partial update to an owned branch. Only non-nil fields
// change.
func (s *Service) Update(ctx context.Context, userID, branchID string, update BranchUpdate) (*Branch, error) {
	if _, err := s.ownedBranch(ctx, userID, branchID); err != nil {
		return nil, err
	}
	b, err := s.storage.UpdateBranch(ctx, branchID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	return b, nil
}

// Delete removes a branch and all of its items.
func (s *Service) Delete(ctx context.Context, userID, branchID string) error {
	if _, err := s.ownedBranch(ctx, userID, branchID); err != nil {
		return err
	}
	if err := s.storage.DeleteItemsByBranch(ctx, branchID); err != nil {
		return fmt.Errorf("failed to delete branch items: %w", err)
	}
	if err := s.storage.DeleteBranch(ctx, branchID); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	s.logger.Info("branch deleted",
		logger.UserID(userID),
		logger.BranchID(branchID),
		logger.Component("branch"),
	)
	return nil
}

// BranchNameExists reports whether any branch claims the given name.
func (s *Service) BranchNameExists(ctx context.Context, name string) (bool, error) {
	return s.storage.BranchNameExists(ctx, name)
}

// ItemParams describes a new item.
type ItemParams struct {
	Title       string
	URL         string
	Style       string
	Description string
	ImageURL    string
	Publisher   string
}

// AddItem appends an item to the end of an owned branch. The new item's
// index equals the current item count.
func (s *Service) AddItem(ctx context.Context, userID, branchID string, params ItemParams) (*Item, error) {
	b, err := s.ownedBranch(ctx, userID, branchID)
	if err != nil {
		return nil, err
	}

	url := sanitizer.TrimURL(params.URL)
	style := params.Style
	if style == "" {
		style = StyleClassic
	}
	if err := validator.Apply(
		validator.Required("title", params.Title),
		validator.MaxLen("title", params.Title, 140),
		validator.ValidURL("url", url),
		validator.OneOf("style", style, StyleClassic, StyleFeatured),
	); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &Item{
		BranchID:    branchID,
		Title:       params.Title,
		URL:         url,
		Index:       len(b.Items),
		Style:       style,
		Active:      true,
		Description: params.Description,
		ImageURL:    params.ImageURL,
		Publisher:   params.Publisher,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	if err := s.storage.SetItemOrder(ctx, branchID, append(b.Items, item.ID)); err != nil {
		return nil, fmt.Errorf("failed to append item reference: %w", err)
	}

	s.logger.Info("item added",
		logger.BranchID(branchID),
		logger.ItemID(item.ID),
		logger.Component("branch"),
	)
	return item, nil
}

// UpdateItem applies a partial update to an item. Ownership is resolved
// through the item's branch.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, update ItemUpdate) (*Item, error) {
	existing, err := s.storage.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if _, err := s.ownedBranch(ctx, userID, existing.BranchID); err != nil {
		return nil, err
	}

	if update.URL != nil {
		trimmed := sanitizer.TrimURL(*update.URL)
		if err := validator.Apply(validator.ValidURL("url", trimmed)); err != nil {
			return nil, err
		}
		update.URL = &trimmed
	}
	if update.Style != nil {
		if err := validator.Apply(validator.OneOf("style", *update.Style, StyleClassic, StyleFeatured)); err != nil {
			return nil, err
		}
	}

	item, err := s.storage.UpdateItem(ctx, itemID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item, pulls its reference from the branch, and
// renumbers the remaining items so indices stay contiguous.
func (s *Service) DeleteItem(ctx context.Context, userID, branchID, itemID string) error {
	b, err := s.ownedBranch(ctx, userID, branchID)
	if err != nil {
		return err
	}
	if _, err := s.itemOnBranch(ctx, b, itemID); err != nil {
		return err
	}

	if err := s.storage.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	remaining := make([]string, 0, len(b.Items))
	for _, id := range b.Items {
		if id != itemID {
			remaining = append(remaining, id)
		}
	}
	if err := s.storage.SetItemOrder(ctx, branchID, remaining); err != nil {
		return fmt.Errorf("failed to update item references: %w", err)
	}
	if err := s.storage.SetItemIndexes(ctx, branchID, remaining); err != nil {
		return fmt.Errorf("failed to renumber items: %w", err)
	}

	s.logger.Info("item deleted",
		logger.BranchID(branchID),
		logger.ItemID(itemID),
		logger.Component("branch"),
	)
	return nil
}

// Reorder replaces the branch's item order. The payload must be a
// permutation of the branch's current item ids; anything else fails with
// ErrInvalidOrder and changes nothing. Every item's index is rewritten to
// its position in the new order.
func (s *Service) Reorder(ctx context.Context, userID, branchID string, orderedIDs []string) error {
	b, err := s.ownedBranch(ctx, userID, branchID)
	if err != nil {
		return err
	}

	if !isPermutation(b.Items, orderedIDs) {
		return ErrInvalidOrder
	}

	if err := s.storage.SetItemOrder(ctx, branchID, orderedIDs); err != nil {
		return fmt.Errorf("failed to replace item order: %w", err)
	}
	if err := s.storage.SetItemIndexes(ctx, branchID, orderedIDs); err != nil {
		return fmt.Errorf("failed to renumber items: %w", err)
	}
	return nil
}

// PublicBranch resolves a branch by its public name with items sorted by
// index. Inactive items are included with their flag; filtering is the
// renderer's concern.
func (s *Service) PublicBranch(ctx context.Context, name string) (*Branch, []Item, error) {
	b, err := s.storage.GetBranchByName(ctx, sanitizer.NormalizeUsername(name))
	if err != nil {
		if errors.Is(err, ErrBranchNotFound) {
			return nil, nil, ErrBranchNotFound
		}
		return nil, nil, fmt.Errorf("failed to load branch: %w", err)
	}

	items, err := s.storage.ListItemsByBranch(ctx, b.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load items: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

	return b, items, nil
}

// Items returns an owned branch's items sorted by index.
func (s *Service) Items(ctx context.Context, userID, branchID string) ([]Item, error) {
	if _, err := s.ownedBranch(ctx, userID, branchID); err != nil {
		return nil, err
	}
	items, err := s.storage.ListItemsByBranch(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })
	return items, nil
}

func (s *Service) ownedBranch(ctx context.Context, userID, branchID string) (*Branch, error) {
	b, err := s.storage.GetBranchByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, ErrBranchNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (s *Service) itemOnBranch(ctx context.Context, b *Branch, itemID string) (*Item, error) {
	item, err := s.storage.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item.BranchID != b.ID {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// isPermutation reports whether candidate holds exactly the same ids as
// current, in any order, with no duplicates.
func isPermutation(current, candidate []string) bool {
	if len(current) != len(candidate) {
		return false
	}
	seen := make(map[string]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	used := make(map[string]bool, len(candidate))
	for _, id := range candidate {
		if !seen[id] || used[id] {
			return false
		}
		used[id] = true
	}
	return true
}
