package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hireiq/identity-service/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository is the MongoDB-backed credential store. Every mutation is
// a single document update, so MongoDB's per-document atomicity provides the
// compare-and-set semantics the token lifecycle requires.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var account domain.Account
	if err := r.coll.FindOne(ctx, filter).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) SetToken(ctx context.Context, accountID string, token domain.SingleUseToken) error {
	field := "verification_token"
	if token.Kind == domain.TokenKindReset {
		field = "reset_token"
	}

	res, err := r.coll.UpdateByID(ctx, accountID, bson.M{
		"$set": bson.M{field: token, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set %s token: %w", token.Kind, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) ConsumeVerificationToken(ctx context.Context, value string, cutoff time.Time) (*domain.Account, error) {
	filter := bson.M{
		"verification_token.value":      value,
		"verification_token.created_at": bson.M{"$gte": cutoff},
		"email_verified":                false,
	}
	update := bson.M{
		"$set":   bson.M{"email_verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verification_token": ""},
	}

	var account domain.Account
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&account)
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	// No live match. Distinguish a token held by a verified account from a
	// consumed, superseded, or expired one.
	var held domain.Account
	if err := r.coll.FindOne(ctx, bson.M{"verification_token.value": value}).Decode(&held); err == nil && held.EmailVerified {
		return nil, domain.ErrAlreadyVerified
	}
	return nil, domain.ErrTokenInvalid
}

func (r *AccountRepository) ConsumeResetToken(ctx context.Context, value string, cutoff time.Time, newHash []byte) (*domain.Account, error) {
	filter := bson.M{
		"reset_token.value":      value,
		"reset_token.created_at": bson.M{"$gte": cutoff},
		"active":                 true,
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": newHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_token": ""},
	}

	var account domain.Account
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, accountID string, newHash []byte) error {
	return r.setFields(ctx, accountID, bson.M{"password_hash": newHash})
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, accountID string, profile domain.Profile) error {
	return r.setFields(ctx, accountID, bson.M{"profile": profile})
}

func (r *AccountRepository) SetActive(ctx context.Context, accountID string, active bool) error {
	return r.setFields(ctx, accountID, bson.M{"active": active})
}

func (r *AccountRepository) setFields(ctx context.Context, accountID string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, accountID, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
