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

const collectionDuressSettings = "duress_settings"

// DuressSettingsRepository implements ports.DuressSettingsRepository using
// MongoDB, keyed by owner id.
type DuressSettingsRepository struct {
	coll *mongo.Collection
}

func NewDuressSettingsRepository(db *mongo.Database) *DuressSettingsRepository {
	return &DuressSettingsRepository{coll: db.Collection(collectionDuressSettings)}
}

type mongoDuressSettings struct {
	ID             string   `bson:"_id"`
	OwnerID        string   `bson:"owner_id"`
	DecoyID        string   `bson:"decoy_id,omitempty"`
	ShowTimestamps bool     `bson:"show_timestamps"`
	MinTimeMinutes int      `bson:"min_time_minutes"`
	MaxTimeMinutes int      `bson:"max_time_minutes"`
	NumFakeUsers   int      `bson:"num_fake_users"`
	Personas       []string `bson:"personas,omitempty"`
}

func (r *DuressSettingsRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.DuressSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d mongoDuressSettings
	if err := r.coll.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("find duress settings: %w", err)
	}

	return &domain.DuressSettings{
		ID:             d.ID,
		OwnerID:        d.OwnerID,
		DecoyID:        d.DecoyID,
		ShowTimestamps: d.ShowTimestamps,
		MinTimeMinutes: d.MinTimeMinutes,
		MaxTimeMinutes: d.MaxTimeMinutes,
		NumFakeUsers:   d.NumFakeUsers,
		Personas:       d.Personas,
	}, nil
}

func (r *DuressSettingsRepository) Save(ctx context.Context, s *domain.DuressSettings) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoDuressSettings{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		DecoyID:        s.DecoyID,
		ShowTimestamps: s.ShowTimestamps,
		MinTimeMinutes: s.MinTimeMinutes,
		MaxTimeMinutes: s.MaxTimeMinutes,
		NumFakeUsers:   s.NumFakeUsers,
		Personas:       s.Personas,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"owner_id": s.OwnerID}, doc, opts); err != nil {
		return fmt.Errorf("save duress settings: %w", err)
	}
	return nil
}

// EnsureIndexes enforces the one-settings-record-per-owner invariant.
func (r *DuressSettingsRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
