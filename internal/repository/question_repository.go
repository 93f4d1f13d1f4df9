package repository

import (
	"context"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuestionRepository reads the content store's question pool. Question text
// lifecycle (authoring, approval) belongs to the content service; the engine
// only queries.
type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListEligible returns approved, active objective questions in scope,
// excluding already-answered IDs. Empty unitID widens the scope to all units.
func (r *QuestionRepository) ListEligible(ctx context.Context, unitID, topicID, difficulty string, excludeIDs []string) ([]models.Question, error) {
	filter := bson.M{
		"type":   models.QuestionTypeObjective,
		"status": "approved",
		"active": true,
	}
	if unitID != "" {
		filter["unit_id"] = unitID
	}
	if topicID != "" {
		filter["topic_id"] = topicID
	}
	if difficulty != "" {
		filter["difficulty"] = difficulty
	}
	if len(excludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": excludeIDs}
	}
	return r.find(ctx, filter)
}

// ListFreeResponseByCategory returns the approved free-response pool for one
// category.
func (r *QuestionRepository) ListFreeResponseByCategory(ctx context.Context, category string) ([]models.Question, error) {
	return r.find(ctx, bson.M{
		"type":     models.QuestionTypeFreeResponse,
		"status":   "approved",
		"active":   true,
		"category": category,
	})
}

func (r *QuestionRepository) find(ctx context.Context, filter bson.M) ([]models.Question, error) {
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}
