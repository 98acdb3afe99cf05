package branch_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vrakshhq/vraksh/internal/branch"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBranch(ctx context.Context, b *branch.Branch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockStore) GetBranchByID(ctx context.Context, id string) (*branch.Branch, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*branch.Branch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetBranchByName(ctx context.Context, name string) (*branch.Branch, error) {
	args := m.Called(ctx, name)
	if b := args.Get(0); b != nil {
		return b.(*branch.Branch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListBranchesByUser(ctx context.Context, userID string) ([]branch.Branch, error) {
	args := m.Called(ctx, userID)
	if b := args.Get(0); b != nil {
		return b.([]branch.Branch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateBranch(ctx context.Context, id string, update branch.BranchUpdate) (*branch.Branch, error) {
	args := m.Called(ctx, id, update)
	if b := args.Get(0); b != nil {
		return b.(*branch.Branch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) DeleteBranch(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) BranchNameExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) SetItemOrder(ctx context.Context, branchID string, itemIDs []string) error {
	args := m.Called(ctx, branchID, itemIDs)
	return args.Error(0)
}

func (m *mockStore) CreateItem(ctx context.Context, item *branch.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockStore) GetItemByID(ctx context.Context, id string) (*branch.Item, error) {
	args := m.Called(ctx, id)
	if i := args.Get(0); i != nil {
		return i.(*branch.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListItemsByBranch(ctx context.Context, branchID string) ([]branch.Item, error) {
	args := m.Called(ctx, branchID)
	if i := args.Get(0); i != nil {
		return i.([]branch.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateItem(ctx context.Context, id string, update branch.ItemUpdate) (*branch.Item, error) {
	args := m.Called(ctx, id, update)
	if i := args.Get(0); i != nil {
		return i.(*branch.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) DeleteItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) DeleteItemsByBranch(ctx context.Context, branchID string) error {
	args := m.Called(ctx, branchID)
	return args.Error(0)
}

func (m *mockStore) SetItemIndexes(ctx context.Context, branchID string, itemIDs []string) error {
	args := m.Called(ctx, branchID, itemIDs)
	return args.Error(0)
}
