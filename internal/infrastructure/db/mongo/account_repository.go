package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

const (
	accountCollection   = "accounts"
	bootstrapCollection = "bootstrap"
	// firstAccountKey is the _id of the singleton first-account marker.
	firstAccountKey = "first-account"
)

type AccountRepository struct {
	accounts  *mongo.Collection
	bootstrap *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		accounts:  db.Collection(accountCollection),
		bootstrap: db.Collection(bootstrapCollection),
	}
}

// EnsureIndexes creates the unique username index. Call once at startup.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

type mongoAccount struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password_hash"`
	Roles            []string           `bson:"roles,omitempty"`
	Disabled         bool               `bson:"disabled"`
	TwoFactorEnabled bool               `bson:"two_factor_enabled"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := mongoAccount{
		Username:         account.Username,
		Email:            account.Email,
		PasswordHash:     account.PasswordHash,
		Roles:            account.Roles,
		Disabled:         account.Disabled,
		TwoFactorEnabled: account.TwoFactorEnabled,
		CreatedAt:        account.CreatedAt.Unix(),
		UpdatedAt:        account.UpdatedAt.Unix(),
	}

	_, err := r.accounts.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	// fetch back to get ID
	return r.FindByUsername(ctx, account.Username)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.accounts.FindOne(ctx, bson.M{"username": username}).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	return &domain.Account{
		ID:               ma.ID.Hex(),
		Username:         ma.Username,
		Email:            ma.Email,
		PasswordHash:     ma.PasswordHash,
		Roles:            ma.Roles,
		Disabled:         ma.Disabled,
		TwoFactorEnabled: ma.TwoFactorEnabled,
		CreatedAt:        unixToTime(ma.CreatedAt),
		UpdatedAt:        unixToTime(ma.UpdatedAt),
	}, nil
}

// AddRole grants the role with $addToSet, so a redundant grant is a no-op.
func (r *AccountRepository) AddRole(ctx context.Context, accountID, role string) error {
	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return fmt.Errorf("parse account id: %w", err)
	}

	res, err := r.accounts.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updated_at": time.Now().UTC().Unix()},
	})
	if err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ClaimFirstAccount inserts the singleton bootstrap marker. The unique _id
// makes the claim atomic: the insert succeeds for exactly one caller, every
// concurrent or later attempt hits the duplicate key and reports false.
func (r *AccountRepository) ClaimFirstAccount(ctx context.Context, accountID string) (bool, error) {
	_, err := r.bootstrap.InsertOne(ctx, bson.M{
		"_id":        firstAccountKey,
		"account_id": accountID,
		"claimed_at": time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("claim first account: %w", err)
	}
	return true, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
