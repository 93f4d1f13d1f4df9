package repository

import (
	"context"
	"time"

	"assessment-service/internal/adaptive"
	"assessment-service/internal/models"
	"assessment-service/internal/srs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProgressionRepository stores one progression record per (user, unit, topic)
// key. MongoDB's single-document atomicity plus the unique key index gives
// the atomic read-modify-write the engine requires; the engine itself does
// not serialize per-learner calls.
type ProgressionRepository struct {
	Col *mongo.Collection
}

func NewProgressionRepository(db *mongo.Database) *ProgressionRepository {
	return &ProgressionRepository{Col: db.Collection("progression_records")}
}

// EnsureIndexes creates the unique key index. Call once at startup.
func (r *ProgressionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "unit_id", Value: 1},
			{Key: "topic_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetOrCreate atomically fetches the record for the key, inserting a fresh
// EASY-tier record on first contact with that scope.
func (r *ProgressionRepository) GetOrCreate(ctx context.Context, userID, unitID, topicID string) (*models.ProgressionRecord, error) {
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "unit_id": unitID, "topic_id": topicID}
	update := bson.M{"$setOnInsert": bson.M{
		"user_id":             userID,
		"unit_id":             unitID,
		"topic_id":            topicID,
		"tier":                string(adaptive.InitialTier()),
		"consecutive_correct": 0,
		"consecutive_wrong":   0,
		"total_attempts":      0,
		"correct_attempts":    0,
		"mastery":             0,
		"recent_outcomes":     []bool{},
		"ease_factor":         srs.InitialEaseFactor,
		"interval_days":       0,
		"next_review":         now,
		"avg_time_seconds":    0.0,
		"created_at":          now,
		"updated_at":          now,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record models.ProgressionRecord
	if err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Save writes back a mutated record. The write replaces the whole document
// under the key filter, so concurrent writers cannot interleave fields.
func (r *ProgressionRepository) Save(ctx context.Context, record *models.ProgressionRecord) error {
	record.UpdatedAt = time.Now().UTC()
	filter := bson.M{
		"user_id":  record.UserID,
		"unit_id":  record.UnitID,
		"topic_id": record.TopicID,
	}
	_, err := r.Col.ReplaceOne(ctx, filter, record)
	return err
}

// FindByUser lists a learner's progression records, optionally scoped to one
// unit.
func (r *ProgressionRepository) FindByUser(ctx context.Context, userID, unitID string) ([]models.ProgressionRecord, error) {
	filter := bson.M{"user_id": userID}
	if unitID != "" {
		filter["unit_id"] = unitID
	}
	return r.find(ctx, filter)
}

// FindDue lists records whose next review is at or before the given time.
func (r *ProgressionRepository) FindDue(ctx context.Context, userID string, before time.Time) ([]models.ProgressionRecord, error) {
	return r.find(ctx, bson.M{
		"user_id":     userID,
		"next_review": bson.M{"$lte": before},
	})
}

func (r *ProgressionRepository) find(ctx context.Context, filter bson.M) ([]models.ProgressionRecord, error) {
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var records []models.ProgressionRecord
	for cur.Next(ctx) {
		var rec models.ProgressionRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}
