package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vrakshhq/vraksh/internal/auth"
)

const (
	usersCollection     = "users"
	tokensCollection    = "tokens"
	referralsCollection = "referrals"
)

// Index names referenced when mapping duplicate-key errors to typed
// errors. They must match the names set in EnsureIndexes.
const (
	idxUserEmail    = "email_unique"
	idxUserUsername = "username_unique"
)

// UserRepository implements auth.UserStore and auth.ResetTokenStore on
// MongoDB.
type UserRepository struct {
	users     *mongo.Collection
	tokens    *mongo.Collection
	referrals *mongo.Collection
}

// NewUserRepository creates a repository over the given database.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:     db.Collection(usersCollection),
		tokens:    db.Collection(tokensCollection),
		referrals: db.Collection(referralsCollection),
	}
}

// EnsureIndexes creates the unique and TTL indexes the auth flows rely on.
// Safe to call on every startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(idxUserEmail).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(idxUserUsername).SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "authProvider", Value: 1}, {Key: "providerId", Value: 1}},
			Options: options.Index().SetName("provider_identity").SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "providerId", Value: bson.D{{Key: "$gt", Value: ""}}}}),
		},
		{
			Keys:    bson.D{{Key: "referralCode", Value: 1}},
			Options: options.Index().SetName("referral_code_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "authKeyHash", Value: 1}},
			Options: options.Index().SetName("auth_key_lookup").SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	_, err = r.tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("token_lookup"),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("token_ttl").SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create token indexes: %w", err)
	}
	return nil
}

type userDoc struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Email         string        `bson:"email"`
	Username      string        `bson:"username,omitempty"`
	PasswordHash  []byte        `bson:"passwordHash,omitempty"`
	AuthProvider  string        `bson:"authProvider"`
	ProviderID    string        `bson:"providerId,omitempty"`
	AuthKeyHash   string        `bson:"authKeyHash,omitempty"`
	AuthKeyExpire time.Time     `bson:"authKeyExpire,omitempty"`
	ReferralCode  string        `bson:"referralCode"`
	ReferredBy    string        `bson:"referredBy,omitempty"`
	ReferralCount int           `bson:"referralCount"`
	CreatedAt     time.Time     `bson:"createdAt"`
}

func (d *userDoc) toDomain() *auth.User {
	return &auth.User{
		ID:            d.ID.Hex(),
		Email:         d.Email,
		Username:      d.Username,
		PasswordHash:  d.PasswordHash,
		AuthProvider:  d.AuthProvider,
		ProviderID:    d.ProviderID,
		AuthKeyHash:   d.AuthKeyHash,
		AuthKeyExpire: d.AuthKeyExpire,
		ReferralCode:  d.ReferralCode,
		ReferredBy:    d.ReferredBy,
		ReferralCount: d.ReferralCount,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	doc := userDoc{
		ID:            bson.NewObjectID(),
		Email:         user.Email,
		Username:      user.Username,
		PasswordHash:  user.PasswordHash,
		AuthProvider:  user.AuthProvider,
		ProviderID:    user.ProviderID,
		ReferralCode:  user.ReferralCode,
		ReferredBy:    user.ReferredBy,
		ReferralCount: 0,
		CreatedAt:     user.CreatedAt,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mapUserDuplicate(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

// mapUserDuplicate picks the typed error matching the violated index.
func mapUserDuplicate(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, idxUserEmail):
		return auth.ErrEmailTaken
	case strings.Contains(msg, idxUserUsername):
		return auth.ErrUsernameTaken
	default:
		return fmt.Errorf("insert user: %w", err)
	}
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}
	return r.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.findUser(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepository) GetUserByProvider(ctx context.Context, provider, providerID string) (*auth.User, error) {
	return r.findUser(ctx, bson.D{
		{Key: "authProvider", Value: provider},
		{Key: "providerId", Value: providerID},
	})
}

func (r *UserRepository) GetUserByReferralCode(ctx context.Context, code string) (*auth.User, error) {
	return r.findUser(ctx, bson.D{{Key: "referralCode", Value: code}})
}

func (r *UserRepository) findUser(ctx context.Context, filter bson.D) (*auth.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID string, hash []byte) error {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return auth.ErrUserNotFound
	}
	res, err := r.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "passwordHash", Value: hash}}}},
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetMagicCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return auth.ErrUserNotFound
	}
	res, err := r.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "authKeyHash", Value: codeHash},
			{Key: "authKeyExpire", Value: expiresAt},
		}}},
	)
	if err != nil {
		return fmt.Errorf("set magic code: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ConsumeMagicCode matches a live code hash and clears it in the same
// findOneAndUpdate, so concurrent verifications cannot both succeed.
func (r *UserRepository) ConsumeMagicCode(ctx context.Context, codeHash string, now time.Time) (*auth.User, error) {
	var doc userDoc
	err := r.users.FindOneAndUpdate(ctx,
		bson.D{
			{Key: "authKeyHash", Value: codeHash},
			{Key: "authKeyExpire", Value: bson.D{{Key: "$gt", Value: now}}},
		},
		bson.D{{Key: "$unset", Value: bson.D{
			{Key: "authKeyHash", Value: ""},
			{Key: "authKeyExpire", Value: ""},
		}}},
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("consume magic code: %w", err)
	}
	return doc.toDomain(), nil
}

type referralDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Referrer  string        `bson:"referrer"`
	Referred  string        `bson:"referred"`
	Status    string        `bson:"status"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (r *UserRepository) CreateReferral(ctx context.Context, referral *auth.Referral) error {
	doc := referralDoc{
		ID:        bson.NewObjectID(),
		Referrer:  referral.Referrer,
		Referred:  referral.Referred,
		Status:    referral.Status,
		CreatedAt: referral.CreatedAt,
	}
	if _, err := r.referrals.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert referral: %w", err)
	}
	return nil
}

func (r *UserRepository) IncrementReferralCount(ctx context.Context, userID string) error {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return auth.ErrUserNotFound
	}
	res, err := r.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "referralCount", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("increment referral count: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

type tokenDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"userId"`
	TokenHash string        `bson:"tokenHash"`
	Type      string        `bson:"type"`
	ExpiresAt time.Time     `bson:"expiresAt"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (r *UserRepository) CreateResetToken(ctx context.Context, token *auth.ResetToken) error {
	doc := tokenDoc{
		ID:        bson.NewObjectID(),
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		Type:      token.Type,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
	if _, err := r.tokens.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken deletes the matching token in the same operation that
// finds it. The expiry filter covers the window before the TTL monitor
// removes expired documents.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, tokenType string, now time.Time) (*auth.ResetToken, error) {
	var doc tokenDoc
	err := r.tokens.FindOneAndDelete(ctx, bson.D{
		{Key: "tokenHash", Value: tokenHash},
		{Key: "type", Value: tokenType},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now}}},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrTokenNotFound
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return &auth.ResetToken{
		UserID:    doc.UserID,
		TokenHash: doc.TokenHash,
		Type:      doc.Type,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}
