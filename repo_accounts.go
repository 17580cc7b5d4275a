package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const accountCollection = "accounts"

type accounts struct {
	db *mongo.Database
}

var _ Accounts = (*accounts)(nil)

// NewAccountsRepository returns an Accounts store backed by the given
// Mongo database. Single-document updates rely on Mongo's native
// atomicity; there is no cross-account invariant to coordinate.
func NewAccountsRepository(db *mongo.Database) Accounts {
	return &accounts{db: db}
}

func (a *accounts) collection() *mongo.Collection {
	return a.db.Collection(accountCollection)
}

// EnsureIndexes creates the unique email index. Called once at startup.
func (a *accounts) EnsureIndexes(ctx context.Context) error {
	_, err := a.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account indexes")
	}
	return nil
}

func (a *accounts) Create(ctx context.Context, account *Account) (*Account, error) {
	now := time.Now()
	account.Email = NormalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := a.collection().InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert account")
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	}

	return account, nil
}

func (a *accounts) GetByID(ctx context.Context, id string) (*Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return a.findOne(ctx, bson.M{"_id": objectID})
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

// GetByVerificationCode looks up by code only. The handler judges expiry
// so that expired and missing codes fail through one code path.
func (a *accounts) GetByVerificationCode(ctx context.Context, code string) (*Account, error) {
	if code == "" {
		return nil, ErrAccountNotFound
	}
	return a.findOne(ctx, bson.M{"verification_code": code})
}

func (a *accounts) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}
	return a.findOne(ctx, bson.M{"reset_token": token})
}

// Update replaces the account document in a single atomic write,
// persisting cleared verification/reset fields as absent.
func (a *accounts) Update(ctx context.Context, account *Account) (*Account, error) {
	account.Email = NormalizeEmail(account.Email)
	account.UpdatedAt = time.Now()

	result := a.collection().FindOneAndReplace(
		ctx,
		bson.M{"_id": account.ID},
		account,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if goerrors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(result.Err(), goerrors.CategoryInternal, "failed to update account")
	}

	var updated Account
	if err := result.Decode(&updated); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode updated account")
	}

	return &updated, nil
}

func (a *accounts) TrackSuccessfulLogin(ctx context.Context, account *Account) error {
	now := time.Now()
	_, err := a.collection().UpdateOne(
		ctx,
		bson.M{"_id": account.ID},
		bson.M{"$set": bson.M{"last_login_at": now, "updated_at": now}},
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login")
	}

	account.LastLoginAt = &now
	return nil
}

func (a *accounts) findOne(ctx context.Context, filter bson.M) (*Account, error) {
	result := a.collection().FindOne(ctx, filter)
	if result.Err() != nil {
		if goerrors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(result.Err(), goerrors.CategoryInternal, "failed to query account")
	}

	var account Account
	if err := result.Decode(&account); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode account")
	}

	return &account, nil
}
