package repository

import (
	"context"
	"errors"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStaleAttempt signals that a guarded attempt update matched no document:
// the attempt is unknown or already past the state the update assumed.
var ErrStaleAttempt = errors.New("attempt not in expected state")

// ErrUnknownQuestion signals that the question was never drawn into the
// attempt, so there is no response slot to write.
var ErrUnknownQuestion = errors.New("question not in attempt")

// AttemptRepository stores exam attempts with their embedded response
// collections. Status moves IN_PROGRESS → GRADED exactly once; every
// mutating update carries a status guard in its filter so a lost race
// surfaces as ErrStaleAttempt instead of a double write.
type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("exam_attempts")}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	_, err := r.Col.InsertOne(ctx, attempt)
	return err
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByUser(ctx context.Context, userID string) ([]models.ExamAttempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.ExamAttempt
	for cur.Next(ctx) {
		var a models.ExamAttempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}

// SaveObjectiveResponse records the learner's answer to one drawn objective
// question. Only open attempts accept answers, and only for questions that
// were actually drawn.
func (r *AttemptRepository) SaveObjectiveResponse(ctx context.Context, attemptID string, resp models.ObjectiveResponse) error {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{
			"_id":          attemptID,
			"status":       models.AttemptInProgress,
			"submitted_at": nil,
			"objective_responses.question_id": resp.QuestionID,
		},
		bson.M{"$set": bson.M{
			"objective_responses.$[elem].answer":             resp.Answer,
			"objective_responses.$[elem].answered":           true,
			"objective_responses.$[elem].is_correct":         resp.IsCorrect,
			"objective_responses.$[elem].time_spent_seconds": resp.TimeSpentSeconds,
			"objective_responses.$[elem].flagged_for_review": resp.FlaggedForReview,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"elem.question_id": resp.QuestionID}},
		}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, attemptID)
	}
	return nil
}

// SaveFreeResponseSubmission records the learner's raw free-response text for
// one drawn question. Only open attempts accept submissions, and only for
// questions that were actually drawn.
func (r *AttemptRepository) SaveFreeResponseSubmission(ctx context.Context, attemptID, questionID, submission string, parts []models.PartResponse) error {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{
			"_id":          attemptID,
			"status":       models.AttemptInProgress,
			"submitted_at": nil,
			"free_responses.question_id": questionID,
		},
		bson.M{"$set": bson.M{
			"free_responses.$[elem].submission": submission,
			"free_responses.$[elem].parts":      parts,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"elem.question_id": questionID}},
		}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, attemptID)
	}
	return nil
}

// classifyMiss decides why a guarded response write matched nothing: a closed
// or unknown attempt is stale, an open attempt means the question was never
// drawn.
func (r *AttemptRepository) classifyMiss(ctx context.Context, attemptID string) error {
	var attempt models.ExamAttempt
	if err := r.Col.FindOne(ctx, bson.M{"_id": attemptID}).Decode(&attempt); err != nil {
		return ErrStaleAttempt
	}
	if attempt.Status != models.AttemptInProgress || attempt.SubmittedAt != nil {
		return ErrStaleAttempt
	}
	return ErrUnknownQuestion
}

// MarkSubmitted stamps the synchronous objective score and closes the attempt
// to further answers. The submitted_at guard makes a concurrent double
// submission lose cleanly.
func (r *AttemptRepository) MarkSubmitted(ctx context.Context, attempt *models.ExamAttempt) error {
	now := time.Now().UTC()
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": attempt.ID, "status": models.AttemptInProgress, "submitted_at": nil},
		bson.M{"$set": bson.M{
			"submitted_at":         now,
			"objective_responses":  attempt.ObjectiveResponses,
			"objective_correct":    attempt.ObjectiveCorrect,
			"objective_total":      attempt.ObjectiveTotal,
			"objective_percentage": attempt.ObjectivePercentage,
		}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrStaleAttempt
	}
	attempt.SubmittedAt = &now
	return nil
}

// SaveGradingResults writes the pipeline output and the final aggregate, and
// flips the attempt to GRADED. The status guard in the filter makes the
// transition happen at most once.
func (r *AttemptRepository) SaveGradingResults(ctx context.Context, attempt *models.ExamAttempt) error {
	now := time.Now().UTC()
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": attempt.ID, "status": models.AttemptInProgress},
		bson.M{"$set": bson.M{
			"status":             models.AttemptGraded,
			"graded_at":          now,
			"free_responses":     attempt.FreeResponses,
			"frq_earned":         attempt.FRQEarned,
			"frq_max":            attempt.FRQMax,
			"frq_percentage":     attempt.FRQPercentage,
			"blended_percentage": attempt.BlendedPercentage,
			"predicted_tier":     attempt.PredictedTier,
			"unit_breakdown":     attempt.UnitBreakdown,
			"strengths":          attempt.Strengths,
			"weaknesses":         attempt.Weaknesses,
			"recommendations":    attempt.Recommendations,
		}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrStaleAttempt
	}
	attempt.Status = models.AttemptGraded
	attempt.GradedAt = &now
	return nil
}
