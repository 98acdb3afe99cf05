package branch

import "errors"

var (
	// ErrBranchNotFound is returned when no branch matches the lookup.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrItemNotFound is returned when no item matches the lookup.
	ErrItemNotFound = errors.New("item not found")
	// ErrNameTaken is returned when the branch name is already claimed.
	ErrNameTaken = errors.New("branch name already taken")
	// ErrNotOwner is returned when the caller does not own the branch.
	ErrNotOwner = errors.New("branch belongs to another user")
	// ErrInvalidOrder is returned when a reorder payload is not a
	// permutation of the branch's current items.
	ErrInvalidOrder = errors.New("order is not a permutation of current items")
)
