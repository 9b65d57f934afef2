package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
)

const envVarCollection = "environment_variables"

type EnvVarRepository struct {
	coll *mongo.Collection
}

func NewEnvVarRepository(db *mongo.Database) *EnvVarRepository {
	return &EnvVarRepository{coll: db.Collection(envVarCollection)}
}

func (r *EnvVarRepository) Upsert(ctx context.Context, v *domain.EnvironmentVariable) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"key": v.Key},
		bson.M{"$set": bson.M{"key": v.Key, "value": v.Value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert environment variable: %w", err)
	}
	return nil
}

func (r *EnvVarRepository) Get(ctx context.Context, key string) (*domain.EnvironmentVariable, error) {
	var v domain.EnvironmentVariable
	if err := r.coll.FindOne(ctx, bson.M{"key": key}).Decode(&v); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEnvVarNotFound
		}
		return nil, fmt.Errorf("find environment variable: %w", err)
	}
	return &v, nil
}

func (r *EnvVarRepository) List(ctx context.Context) ([]*domain.EnvironmentVariable, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list environment variables: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.EnvironmentVariable
	for cur.Next(ctx) {
		var v domain.EnvironmentVariable
		if err := cur.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode environment variable: %w", err)
		}
		out = append(out, &v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list environment variables: %w", err)
	}
	return out, nil
}

func (r *EnvVarRepository) Delete(ctx context.Context, key string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return fmt.Errorf("delete environment variable: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEnvVarNotFound
	}
	return nil
}
