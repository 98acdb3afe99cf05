package branch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vrakshhq/vraksh/internal/branch"
)

func ownedBranch(items ...string) *branch.Branch {
	if items == nil {
		items = []string{}
	}
	return &branch.Branch{ID: "br-1", UserID: "user-1", Name: "alice", Items: items}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("normalizes name and starts empty", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("CreateBranch", mock.Anything, mock.MatchedBy(func(b *branch.Branch) bool {
			return b.Name == "alice" && b.UserID == "user-1" && len(b.Items) == 0
		})).Return(nil).Once()

		svc := branch.NewService(store)

		b, err := svc.Create(context.Background(), "user-1", branch.CreateParams{Name: "  Alice "})
		require.NoError(t, err)
		assert.Equal(t, "alice", b.Name)
		store.AssertExpectations(t)
	})

	t.Run("taken name surfaces typed error", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("CreateBranch", mock.Anything, mock.Anything).Return(branch.ErrNameTaken).Once()

		svc := branch.NewService(store)

		_, err := svc.Create(context.Background(), "user-1", branch.CreateParams{Name: "alice"})
		require.ErrorIs(t, err, branch.ErrNameTaken)
	})

	t.Run("invalid name never reaches storage", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		svc := branch.NewService(store)

		_, err := svc.Create(context.Background(), "user-1", branch.CreateParams{Name: "!!"})
		require.Error(t, err)
		store.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	})
}

func TestService_Ownership(t *testing.T) {
	t.Parallel()

	store := new(mockStore)
	store.On("GetBranchByID", mock.Anything, "br-1").Return(ownedBranch(), nil)

	svc := branch.NewService(store)

	t.Run("owner reads the branch", func(t *testing.T) {
		b, err := svc.Get(context.Background(), "user-1", "br-1")
		require.NoError(t, err)
		assert.Equal(t, "br-1", b.ID)
	})

	t.Run("other users are rejected", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "user-2", "br-1")
		require.ErrorIs(t, err, branch.ErrNotOwner)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("cascades to items", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByID", mock.Anything, "br-1").Return(ownedBranch("it-1", "it-2"), nil).Once()
		store.On("DeleteItemsByBranch", mock.Anything, "br-1").Return(nil).Once()
		store.On("DeleteBranch", mock.Anything, "br-1").Return(nil).Once()

		svc := branch.NewService(store)

		require.NoError(t, svc.Delete(context.Background(), "user-1", "br-1"))
		store.AssertExpectations(t)
	})
}

func TestService_AddItem(t *testing.T) {
	t.Parallel()

	t.Run("appends with index equal to item count", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByID", mock.Anything, "br-1").Return(ownedBranch("it-1", "it-2"), nil).Once()
		store.On("CreateItem", mock.Anything, mock.MatchedBy(func(i *branch.Item) bool {
			i.ID = "it-3"
			return i.Index == 2 && i.Active && i.Style == branch.StyleClassic
		})).Return(nil).Once()
		store.On("SetItemOrder", mock.Anything, "br-1", []string{"it-1", "it-2", "it-3"}).Return(nil).Once()

		svc := branch.NewService(store)

		item, err := svc.AddItem(context.Background(), "user-1", "br-1", branch.ItemParams{
			Title: "My blog",
			URL:   "https://blog.example.com ",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, item.Index)
		assert.Equal(t, "https://blog.example.com", item.URL)
		store.AssertExpectations(t)
	})

	t.Run("rejects bad url", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByID", mock.Anything, "br-1").Return(ownedBranch(), nil).Once()

		svc := branch.NewService(store)

		_, err := svc.AddItem(context.Background(), "user-1", "br-1", branch.ItemParams{
			Title: "bad",
			URL:   "ftp://nope",
		})
		require.Error(t, err)
		store.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})
}

func TestService_DeleteItem(t *testing.T) {
	t.Parallel()

	t.Run("pulls reference and renumbers the rest", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByID", mock.Anything, "br-1").
			Return(ownedBranch("it-1", "it-2", "it-3"), nil).Once()
		store.On("GetItemByID", mock.Anything, "it-2").
			Return(&branch.Item{ID: "it-2", BranchID: "br-1", Index: 1}, nil).Once()
		store.On("DeleteItem", mock.Anything, "it-2").Return(nil).Once()
		store.On("SetItemOrder", mock.Anything, "br-1", []string{"it-1", "it-3"}).Return(nil).Once()
		store.On("SetItemIndexes", mock.Anything, "br-1", []string{"it-1", "it-3"}).Return(nil).Once()

		svc := branch.NewService(store)

		require.NoError(t, svc.DeleteItem(context.Background(), "user-1", "br-1", "it-2"))
		store.AssertExpectations(t)
	})

	t.Run("item from another branch is not found", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByID", mock.Anything, "br-1").Return(ownedBranch("it-1"), nil).Once()
		store.On("GetItemByID", mock.Anything, "it-9").
			Return(&branch.Item{ID: "it-9", BranchID: "br-other"}, nil).Once()

		svc := branch.NewService(store)

		err := svc.DeleteItem(context.Background(), "user-1", "br-1", "it-9")
		require.ErrorIs(t, err, branch.ErrItemNotFound)
		store.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
	})
}

func TestService_Reorder(t *testing.T) {
	t.Parallel()

	t.Run("permutation rewrites order and indexes", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByID", mock.Anything, "br-1").
			Return(ownedBranch("it-1", "it-2", "it-3"), nil).Once()
		store.On("SetItemOrder", mock.Anything, "br-1", []string{"it-3", "it-1", "it-2"}).Return(nil).Once()
		store.On("SetItemIndexes", mock.Anything, "br-1", []string{"it-3", "it-1", "it-2"}).Return(nil).Once()

		svc := branch.NewService(store)

		require.NoError(t, svc.Reorder(context.Background(), "user-1", "br-1",
			[]string{"it-3", "it-1", "it-2"}))
		store.AssertExpectations(t)
	})

	for name, payload := range map[string][]string{
		"missing item":        {"it-1", "it-2"},
		"unknown item":        {"it-1", "it-2", "it-9"},
		"duplicate item":      {"it-1", "it-2", "it-2"},
		"superset of items":   {"it-1", "it-2", "it-3", "it-4"},
		"empty for non-empty": {},
	} {
		payload := payload
		t.Run(name+" changes nothing", func(t *testing.T) {
			t.Parallel()

			store := new(mockStore)
			store.On("GetBranchByID", mock.Anything, "br-1").
				Return(ownedBranch("it-1", "it-2", "it-3"), nil).Once()

			svc := branch.NewService(store)

			err := svc.Reorder(context.Background(), "user-1", "br-1", payload)
			require.ErrorIs(t, err, branch.ErrInvalidOrder)
			store.AssertNotCalled(t, "SetItemOrder", mock.Anything, mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "SetItemIndexes", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_PublicBranch(t *testing.T) {
	t.Parallel()

	t.Run("items come back sorted by index, inactive included", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByName", mock.Anything, "alice").Return(ownedBranch("it-1", "it-2", "it-3"), nil).Once()
		store.On("ListItemsByBranch", mock.Anything, "br-1").Return([]branch.Item{
			{ID: "it-3", Index: 2, Active: false},
			{ID: "it-1", Index: 0, Active: true},
			{ID: "it-2", Index: 1, Active: true},
		}, nil).Once()

		svc := branch.NewService(store)

		b, items, err := svc.PublicBranch(context.Background(), "Alice")
		require.NoError(t, err)
		assert.Equal(t, "br-1", b.ID)
		require.Len(t, items, 3)
		assert.Equal(t, []string{"it-1", "it-2", "it-3"},
			[]string{items[0].ID, items[1].ID, items[2].ID})
		assert.False(t, items[2].Active)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("GetBranchByName", mock.Anything, "ghost").
			Return(nil, branch.ErrBranchNotFound).Once()

		svc := branch.NewService(store)

		_, _, err := svc.PublicBranch(context.Background(), "ghost")
		require.ErrorIs(t, err, branch.ErrBranchNotFound)
	})
}
