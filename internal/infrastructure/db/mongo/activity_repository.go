package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

const activityCollection = "activity_log"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
// The collection is append-only: there are no update or delete operations.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

func (r *ActivityRepository) Insert(ctx context.Context, rec *domain.ActivityRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"action":    rec.Action,
		"detail":    rec.Detail,
		"timestamp": rec.Timestamp.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity record: %w", err)
	}
	return nil
}

// List returns all activity records, newest first.
func (r *ActivityRepository) List(ctx context.Context) ([]*domain.ActivityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.ActivityRecord
	for cur.Next(ctx) {
		var doc struct {
			ID        primitive.ObjectID `bson:"_id"`
			Action    string             `bson:"action"`
			Detail    string             `bson:"detail"`
			Timestamp primitive.DateTime `bson:"timestamp"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity record: %w", err)
		}
		out = append(out, &domain.ActivityRecord{
			ID:        doc.ID.Hex(),
			Action:    doc.Action,
			Detail:    doc.Detail,
			Timestamp: doc.Timestamp.Time().UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}
	return out, nil
}
