package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veilchat/chat-server/internal/core/domain"
)

const collectionMessages = "messages"

// MessageRepository implements ports.MessageRepository using MongoDB.
// Read-receipt and reaction writes are single atomic updates so concurrent
// handlers cannot lose each other's state.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{coll: db.Collection(collectionMessages)}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) InsertBatch(ctx context.Context, msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]any, len(msgs))
	for i, m := range msgs {
		docs[i] = m
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

// AddReader adds readerID to the read set with $addToSet, which makes the
// operation idempotent at the database rather than in handler code.
func (r *MessageRepository) AddReader(ctx context.Context, messageID, readerID string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$addToSet": bson.M{"read_by": readerID}}
	return r.findOneAndUpdate(ctx, messageID, update)
}

// ReplaceReaction removes any prior reaction by reactorID and inserts the
// new one in a single aggregation-pipeline update, so two reactors updating
// the same message concurrently cannot lose each other's reaction.
func (r *MessageRepository) ReplaceReaction(ctx context.Context, messageID, reactorID, symbol string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filtered := bson.M{"$filter": bson.M{
		"input": "$reactions",
		"as":    "r",
		"cond":  bson.M{"$ne": bson.A{"$$r.user_id", reactorID}},
	}}

	var reactions any = filtered
	if symbol != "" {
		reactions = bson.M{"$concatArrays": bson.A{
			filtered,
			bson.A{bson.M{"user_id": reactorID, "reaction": symbol}},
		}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"reactions": reactions}}},
	}
	return r.findOneAndUpdate(ctx, messageID, pipeline)
}

func (r *MessageRepository) findOneAndUpdate(ctx context.Context, messageID string, update any) (*domain.Message, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m domain.Message
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": messageID}, update, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("update message: %w", err)
	}
	return &m, nil
}

func (r *MessageRepository) ListConversation(ctx context.Context, userID, otherID string, page, limit int) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID, "receiver_id": otherID},
		bson.M{"sender_id": otherID, "receiver_id": userID},
	}}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	return r.list(ctx, filter, opts)
}

func (r *MessageRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := participantFilter(userID)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.list(ctx, filter, opts)
}

func (r *MessageRepository) CountByParticipant(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, participantFilter(userID))
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func participantFilter(userID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}}
}

func (r *MessageRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Message, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cur.Close(ctx)

	var msgs []*domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

// EnsureIndexes creates the indexes the conversation queries rely on.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
