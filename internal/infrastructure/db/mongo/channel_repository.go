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

const channelCollection = "channels"

type ChannelRepository struct {
	coll *mongo.Collection
}

func NewChannelRepository(db *mongo.Database) *ChannelRepository {
	return &ChannelRepository{coll: db.Collection(channelCollection)}
}

// EnsureIndexes creates the unique channel name index. Call once at startup.
func (r *ChannelRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create channel name index: %w", err)
	}
	return nil
}

type mongoChannel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Domain    string             `bson:"domain"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *ChannelRepository) Create(ctx context.Context, channel *domain.Channel) (*domain.Channel, error) {
	doc := mongoChannel{
		Name:      channel.Name,
		Domain:    channel.Domain,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrChannelExists
		}
		return nil, fmt.Errorf("insert channel: %w", err)
	}

	return r.FindByName(ctx, channel.Name)
}

func (r *ChannelRepository) FindByName(ctx context.Context, name string) (*domain.Channel, error) {
	var mc mongoChannel
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrChannelNotFound
		}
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return toChannel(mc), nil
}

func (r *ChannelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Channel
	for cur.Next(ctx) {
		var mc mongoChannel
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode channel: %w", err)
		}
		out = append(out, toChannel(mc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return out, nil
}

func toChannel(mc mongoChannel) *domain.Channel {
	return &domain.Channel{
		ID:        mc.ID.Hex(),
		Name:      mc.Name,
		Domain:    mc.Domain,
		CreatedAt: mc.CreatedAt,
	}
}
