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

const collectionIdentities = "identities"

// IdentityRepository implements ports.IdentityRepository using MongoDB.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(collectionIdentities)}
}

// mongoIdentity is the storage document. It is deliberately separate from
// domain.Identity so the persisted shape is not coupled to the JSON contract.
type mongoIdentity struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	Email          string    `bson:"email"`
	CredentialHash string    `bson:"credential_hash"`
	Avatar         string    `bson:"avatar,omitempty"`
	Status         string    `bson:"status"`
	LastSeen       time.Time `bson:"last_seen,omitempty"`
	IsDecoy        bool      `bson:"is_decoy"`
	OwnerID        string    `bson:"owner_id,omitempty"`
	Synthetic      bool      `bson:"synthetic"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toDoc(i *domain.Identity) mongoIdentity {
	return mongoIdentity{
		ID:             i.ID,
		Username:       i.Username,
		Email:          i.Email,
		CredentialHash: i.CredentialHash,
		Avatar:         i.Avatar,
		Status:         string(i.Status),
		LastSeen:       i.LastSeen,
		IsDecoy:        i.IsDecoy,
		OwnerID:        i.OwnerID,
		Synthetic:      i.Synthetic,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func fromDoc(d mongoIdentity) *domain.Identity {
	return &domain.Identity{
		ID:             d.ID,
		Username:       d.Username,
		Email:          d.Email,
		CredentialHash: d.CredentialHash,
		Avatar:         d.Avatar,
		Status:         domain.PresenceStatus(d.Status),
		LastSeen:       d.LastSeen,
		IsDecoy:        d.IsDecoy,
		OwnerID:        d.OwnerID,
		Synthetic:      d.Synthetic,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toDoc(identity)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d mongoIdentity
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return fromDoc(d), nil
}

func (r *IdentityRepository) UpdateProfile(ctx context.Context, id, username, email, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"username":   username,
		"email":      email,
		"updated_at": time.Now().UTC(),
	}
	if hash != "" {
		set["credential_hash"] = hash
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) UpdatePresence(ctx context.Context, id string, status domain.PresenceStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     string(status),
		"last_seen":  now,
		"updated_at": now,
	}})
	if err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the identity queries rely on.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
