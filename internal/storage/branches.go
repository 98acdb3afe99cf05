package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vrakshhq/vraksh/internal/branch"
)

const (
	branchesCollection    = "branches"
	branchItemsCollection = "branch_items"
)

const idxBranchName = "branch_name_unique"

// BranchRepository implements branch.Store on MongoDB.
type BranchRepository struct {
	branches *mongo.Collection
	items    *mongo.Collection
}

// NewBranchRepository creates a repository over the given database.
func NewBranchRepository(db *mongo.Database) *BranchRepository {
	return &BranchRepository{
		branches: db.Collection(branchesCollection),
		items:    db.Collection(branchItemsCollection),
	}
}

// EnsureIndexes creates the branch indexes. Safe to call on every startup.
func (r *BranchRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.branches.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName(idxBranchName).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("branch_owner"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create branch indexes: %w", err)
	}

	_, err = r.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "branchId", Value: 1}, {Key: "index", Value: 1}},
		Options: options.Index().SetName("item_position"),
	})
	if err != nil {
		return fmt.Errorf("failed to create item indexes: %w", err)
	}
	return nil
}

type branchDoc struct {
	ID                 bson.ObjectID       `bson:"_id,omitempty"`
	UserID             string              `bson:"userId"`
	Name               string              `bson:"name"`
	Description        string              `bson:"description,omitempty"`
	SocialIcons        []branch.SocialIcon `bson:"socialIcons,omitempty"`
	Items              []string            `bson:"items"`
	BackgroundColor    string              `bson:"backgroundColor,omitempty"`
	FontColor          string              `bson:"fontColor,omitempty"`
	FontFamily         string              `bson:"fontFamily,omitempty"`
	AvatarShape        string              `bson:"avatarShape,omitempty"`
	BackgroundImageURL string              `bson:"backgroundImageUrl,omitempty"`
	TemplateID         string              `bson:"templateId,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt"`
}

func (d *branchDoc) toDomain() *branch.Branch {
	items := d.Items
	if items == nil {
		items = []string{}
	}
	return &branch.Branch{
		ID:                 d.ID.Hex(),
		UserID:             d.UserID,
		Name:               d.Name,
		Description:        d.Description,
		SocialIcons:        d.SocialIcons,
		Items:              items,
		BackgroundColor:    d.BackgroundColor,
		FontColor:          d.FontColor,
		FontFamily:         d.FontFamily,
		AvatarShape:        d.AvatarShape,
		BackgroundImageURL: d.BackgroundImageURL,
		TemplateID:         d.TemplateID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *BranchRepository) CreateBranch(ctx context.Context, b *branch.Branch) error {
	doc := branchDoc{
		ID:          bson.NewObjectID(),
		UserID:      b.UserID,
		Name:        b.Name,
		Description: b.Description,
		SocialIcons: b.SocialIcons,
		Items:       b.Items,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if doc.Items == nil {
		doc.Items = []string{}
	}
	if _, err := r.branches.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return branch.ErrNameTaken
		}
		return fmt.Errorf("insert branch: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *BranchRepository) GetBranchByID(ctx context.Context, id string) (*branch.Branch, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, branch.ErrBranchNotFound
	}
	return r.findBranch(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *BranchRepository) GetBranchByName(ctx context.Context, name string) (*branch.Branch, error) {
	return r.findBranch(ctx, bson.D{{Key: "name", Value: name}})
}

func (r *BranchRepository) findBranch(ctx context.Context, filter bson.D) (*branch.Branch, error) {
	var doc branchDoc
	if err := r.branches.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, branch.ErrBranchNotFound
		}
		return nil, fmt.Errorf("find branch: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BranchRepository) ListBranchesByUser(ctx context.Context, userID string) ([]branch.Branch, error) {
	cur, err := r.branches.Find(ctx, bson.D{{Key: "userId", Value: userID}})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer cur.Close(ctx)

	var out []branch.Branch
	for cur.Next(ctx) {
		var doc branchDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode branch: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return out, nil
}

func (r *BranchRepository) UpdateBranch(ctx context.Context, id string, update branch.BranchUpdate) (*branch.Branch, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, branch.ErrBranchNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: time.Now()}}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.SocialIcons != nil {
		set = append(set, bson.E{Key: "socialIcons", Value: *update.SocialIcons})
	}
	if update.BackgroundColor != nil {
		set = append(set, bson.E{Key: "backgroundColor", Value: *update.BackgroundColor})
	}
	if update.FontColor != nil {
		set = append(set, bson.E{Key: "fontColor", Value: *update.FontColor})
	}
	if update.FontFamily != nil {
		set = append(set, bson.E{Key: "fontFamily", Value: *update.FontFamily})
	}
	if update.AvatarShape != nil {
		set = append(set, bson.E{Key: "avatarShape", Value: *update.AvatarShape})
	}
	if update.BackgroundImageURL != nil {
		set = append(set, bson.E{Key: "backgroundImageUrl", Value: *update.BackgroundImageURL})
	}
	if update.TemplateID != nil {
		set = append(set, bson.E{Key: "templateId", Value: *update.TemplateID})
	}

	var doc branchDoc
	err = r.branches.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, branch.ErrBranchNotFound
		}
		return nil, fmt.Errorf("update branch: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BranchRepository) DeleteBranch(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return branch.ErrBranchNotFound
	}
	res, err := r.branches.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if res.DeletedCount == 0 {
		return branch.ErrBranchNotFound
	}
	return nil
}

func (r *BranchRepository) BranchNameExists(ctx context.Context, name string) (bool, error) {
	count, err := r.branches.CountDocuments(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("count branches: %w", err)
	}
	return count > 0, nil
}

func (r *BranchRepository) SetItemOrder(ctx context.Context, branchID string, itemIDs []string) error {
	oid, err := bson.ObjectIDFromHex(branchID)
	if err != nil {
		return branch.ErrBranchNotFound
	}
	if itemIDs == nil {
		itemIDs = []string{}
	}
	res, err := r.branches.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "items", Value: itemIDs},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("set item order: %w", err)
	}
	if res.MatchedCount == 0 {
		return branch.ErrBranchNotFound
	}
	return nil
}

type itemDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	BranchID    string        `bson:"branchId"`
	Title       string        `bson:"title"`
	URL         string        `bson:"url"`
	Index       int           `bson:"index"`
	Style       string        `bson:"style"`
	Active      bool          `bson:"active"`
	Description string        `bson:"description,omitempty"`
	ImageURL    string        `bson:"imageUrl,omitempty"`
	Publisher   string        `bson:"publisher,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d *itemDoc) toDomain() *branch.Item {
	return &branch.Item{
		ID:          d.ID.Hex(),
		BranchID:    d.BranchID,
		Title:       d.Title,
		URL:         d.URL,
		Index:       d.Index,
		Style:       d.Style,
		Active:      d.Active,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Publisher:   d.Publisher,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *BranchRepository) CreateItem(ctx context.Context, item *branch.Item) error {
	doc := itemDoc{
		ID:          bson.NewObjectID(),
		BranchID:    item.BranchID,
		Title:       item.Title,
		URL:         item.URL,
		Index:       item.Index,
		Style:       item.Style,
		Active:      item.Active,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Publisher:   item.Publisher,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if _, err := r.items.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	item.ID = doc.ID.Hex()
	return nil
}

func (r *BranchRepository) GetItemByID(ctx context.Context, id string) (*branch.Item, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, branch.ErrItemNotFound
	}
	var doc itemDoc
	if err := r.items.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, branch.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BranchRepository) ListItemsByBranch(ctx context.Context, branchID string) ([]branch.Item, error) {
	cur, err := r.items.Find(ctx,
		bson.D{{Key: "branchId", Value: branchID}},
		options.Find().SetSort(bson.D{{Key: "index", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer cur.Close(ctx)

	var out []branch.Item
	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

func (r *BranchRepository) UpdateItem(ctx context.Context, id string, update branch.ItemUpdate) (*branch.Item, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, branch.ErrItemNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: time.Now()}}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.URL != nil {
		set = append(set, bson.E{Key: "url", Value: *update.URL})
	}
	if update.Style != nil {
		set = append(set, bson.E{Key: "style", Value: *update.Style})
	}
	if update.Active != nil {
		set = append(set, bson.E{Key: "active", Value: *update.Active})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.ImageURL != nil {
		set = append(set, bson.E{Key: "imageUrl", Value: *update.ImageURL})
	}
	if update.Publisher != nil {
		set = append(set, bson.E{Key: "publisher", Value: *update.Publisher})
	}

	var doc itemDoc
	err = r.items.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, branch.ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BranchRepository) DeleteItem(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return branch.ErrItemNotFound
	}
	res, err := r.items.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return branch.ErrItemNotFound
	}
	return nil
}

func (r *BranchRepository) DeleteItemsByBranch(ctx context.Context, branchID string) error {
	if _, err := r.items.DeleteMany(ctx, bson.D{{Key: "branchId", Value: branchID}}); err != nil {
		return fmt.Errorf("delete branch items: %w", err)
	}
	return nil
}

// SetItemIndexes rewrites each item's index to its position in itemIDs with
// a single bulk write.
func (r *BranchRepository) SetItemIndexes(ctx context.Context, branchID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(itemIDs))
	for i, id := range itemIDs {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return branch.ErrItemNotFound
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: oid}, {Key: "branchId", Value: branchID}}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{
				{Key: "index", Value: i},
				{Key: "updatedAt", Value: time.Now()},
			}}}))
	}
	if _, err := r.items.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("renumber items: %w", err)
	}
	return nil
}
