package repository

import (
	"context"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnswerRepository appends practice answer records.
type AnswerRepository struct {
	Col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{Col: db.Collection("practice_answers")}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *models.PracticeAnswer) error {
	_, err := r.Col.InsertOne(ctx, answer)
	return err
}

func (r *AnswerRepository) FindBySession(ctx context.Context, sessionID string) ([]models.PracticeAnswer, error) {
	cur, err := r.Col.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var answers []models.PracticeAnswer
	for cur.Next(ctx) {
		var a models.PracticeAnswer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, cur.Err()
}
