package branch

import (
	"context"
	"time"
)

// Item display styles.
const (
	StyleClassic  = "classic"
	StyleFeatured = "featured"
)

// Avatar shapes accepted by the theming fields.
const (
	AvatarCircle  = "circle"
	AvatarRounded = "rounded"
	AvatarSquare  = "square"
)

// SocialIcon is a single social link rendered on the public page.
type SocialIcon struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

// Branch is a user's public link page. Name is the URL segment and is
// globally unique. Items holds item ids in display order; it is the
// authoritative order and every item's Index mirrors its position here.
type Branch struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"userId"`
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	SocialIcons        []SocialIcon `json:"socialIcons,omitempty"`
	Items              []string     `json:"items"`
	BackgroundColor    string       `json:"backgroundColor,omitempty"`
	FontColor          string       `json:"fontColor,omitempty"`
	FontFamily         string       `json:"fontFamily,omitempty"`
	AvatarShape        string       `json:"avatarShape,omitempty"`
	BackgroundImageURL string       `json:"backgroundImageUrl,omitempty"`
	TemplateID         string       `json:"templateId,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Item is a single link on a branch. Index is the zero-based display
// position; indices within a branch stay contiguous across deletes and
// reorders.
type Item struct {
	ID          string    `json:"id"`
	BranchID    string    `json:"branchId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Index       int       `json:"index"`
	Style       string    `json:"style"`
	Active      bool      `json:"active"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BranchUpdate carries a partial branch update. Nil fields are left
// untouched.
type BranchUpdate struct {
	Description        *string
	SocialIcons        *[]SocialIcon
	BackgroundColor    *string
	FontColor          *string
	FontFamily         *string
	AvatarShape        *string
	BackgroundImageURL *string
	TemplateID         *string
}

// ItemUpdate carries a partial item update. Nil fields are left untouched.
type ItemUpdate struct {
	Title       *string
	URL         *string
	Style       *string
	Active      *bool
	Description *string
	ImageURL    *string
	Publisher   *string
}

// Store is the persistence interface for branches and their items. Create
// maps a branch-name unique-index violation to ErrNameTaken.
type Store interface {
	CreateBranch(ctx context.Context, b *Branch) error
	GetBranchByID(ctx context.Context, id string) (*Branch, error)
	GetBranchByName(ctx context.Context, name string) (*Branch, error)
	ListBranchesByUser(ctx context.Context, userID string) ([]Branch, error)
	UpdateBranch(ctx context.Context, id string, update BranchUpdate) (*Branch, error)
	DeleteBranch(ctx context.Context, id string) error
	BranchNameExists(ctx context.Context, name string) (bool, error)
	// SetItemOrder replaces the branch's ordered item reference list.
	SetItemOrder(ctx context.Context, branchID string, itemIDs []string) error

	CreateItem(ctx context.Context, item *Item) error
	GetItemByID(ctx context.Context, id string) (*Item, error)
	ListItemsByBranch(ctx context.Context, branchID string) ([]Item, error)
	UpdateItem(ctx context.Context, id string, update ItemUpdate) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByBranch(ctx context.Context, branchID string) error
	// SetItemIndexes rewrites each listed item's index to its position in
	// itemIDs.
	SetItemIndexes(ctx context.Context, branchID string, itemIDs []string) error
}
