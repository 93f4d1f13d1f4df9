// Package evaluation grades free-response submissions through an external
// text-evaluation collaborator. Parts of one question are dispatched
// concurrently; questions of one attempt are graded concurrently; a failed or
// timed-out call zero-scores its own part only and flags it for manual
// review.
package evaluation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"assessment-service/internal/models"
)

// Pipeline fans free-response parts out to the evaluator and folds the
// results back into per-question scores.
type Pipeline struct {
	evaluator Evaluator
	logger    *slog.Logger
	timeout   time.Duration
}

// NewPipeline creates a grading pipeline. The timeout bounds each individual
// evaluator call.
func NewPipeline(evaluator Evaluator, logger *slog.Logger, timeout time.Duration) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{evaluator: evaluator, logger: logger, timeout: timeout}
}

// GradeAll grades every answer in place, one goroutine per question, and
// blocks until all questions have joined. Already-graded answers are left
// untouched. An answer whose question cannot be found is degraded to a
// flagged zero score so the attempt still reaches a terminal state.
func (p *Pipeline) GradeAll(ctx context.Context, answers []models.FreeResponseAnswer, questions map[string]*models.Question) {
	var wg sync.WaitGroup
	for i := range answers {
		q, ok := questions[answers[i].QuestionID]
		if !ok {
			p.failAnswer(&answers[i])
			continue
		}
		wg.Add(1)
		go func(ans *models.FreeResponseAnswer, q *models.Question) {
			defer wg.Done()
			p.GradeAnswer(ctx, ans, q)
		}(&answers[i], q)
	}
	wg.Wait()
}

// GradeAnswer grades one free-response answer in place. Re-invoking on an
// answer that already reached a terminal status is a no-op, which makes the
// pipeline idempotent.
func (p *Pipeline) GradeAnswer(ctx context.Context, ans *models.FreeResponseAnswer, q *models.Question) {
	switch ans.Status {
	case models.FRQGraded, models.FRQZeroScored:
		return
	}

	parts := partsOf(q)
	ans.MaxPoints = q.TotalRubricPoints()

	// Nothing submitted at all: zero-score without any remote calls.
	if isBlankSubmission(ans, parts) {
		ans.Status = models.FRQZeroScored
		ans.Score = 0
		ans.Feedback = FeedbackNoSubmission
		ans.PartScores = zeroPartScores(parts)
		return
	}

	ans.Status = models.FRQGrading

	scores := make([]models.PartScore, len(parts))
	var wg sync.WaitGroup
	for i, part := range parts {
		submission := submissionFor(ans, part.Label)
		if strings.TrimSpace(submission) == "" {
			scores[i] = models.PartScore{
				Label:     part.Label,
				Score:     0,
				MaxPoints: part.Points,
				Feedback:  FeedbackNoSubmission,
			}
			continue
		}

		wg.Add(1)
		go func(i int, part models.RubricPart, submission string) {
			defer wg.Done()
			scores[i] = p.gradePart(ctx, q, part, submission)
		}(i, part, submission)
	}
	wg.Wait()

	total := 0
	var feedback strings.Builder
	for i, ps := range scores {
		total += ps.Score
		if i > 0 {
			feedback.WriteString("\n\n")
		}
		feedback.WriteString("Part " + ps.Label + ": " + ps.Feedback)
	}
	if total > ans.MaxPoints {
		total = ans.MaxPoints
	}

	ans.Score = total
	ans.PartScores = scores
	ans.Feedback = feedback.String()
	ans.Status = models.FRQGraded
}

// failAnswer terminally zero-scores an answer that cannot be graded at all,
// flagged for manual review.
func (p *Pipeline) failAnswer(ans *models.FreeResponseAnswer) {
	switch ans.Status {
	case models.FRQGraded, models.FRQZeroScored:
		return
	}
	p.logger.Error("free-response answer has no gradable question",
		"question_id", ans.QuestionID)
	ans.Score = 0
	ans.PartScores = []models.PartScore{{
		Label:       "response",
		Score:       0,
		MaxPoints:   ans.MaxPoints,
		Feedback:    FeedbackEvalFailed,
		NeedsManual: true,
	}}
	ans.Feedback = FeedbackEvalFailed
	ans.Status = models.FRQGraded
}

// gradePart runs one evaluator call with its own timeout. Failure degrades to
// a zero score flagged for manual review; it never propagates.
func (p *Pipeline) gradePart(ctx context.Context, q *models.Question, part models.RubricPart, submission string) models.PartScore {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ev, err := p.evaluator.Evaluate(callCtx, PartContext{
		QuestionID:     q.ID,
		PartLabel:      part.Label,
		Prompt:         part.Prompt,
		Scaffold:       part.Scaffold,
		SampleSolution: part.SampleSolution,
		Rubric:         part.Rubric,
		MaxPoints:      part.Points,
		Submission:     submission,
	})
	if err != nil {
		p.logger.Error("part evaluation failed",
			"question_id", q.ID,
			"part", part.Label,
			"error", err,
		)
		return models.PartScore{
			Label:       part.Label,
			Score:       0,
			MaxPoints:   part.Points,
			Feedback:    FeedbackEvalFailed,
			NeedsManual: true,
		}
	}

	// The penalty cap holds for any Evaluator, not just the HTTP client.
	penalties := ev.Penalties
	if len(penalties) > maxPenalties {
		penalties = penalties[:maxPenalties]
	}
	score := ev.Score - len(penalties)
	if score < 0 {
		score = 0
	}
	return models.PartScore{
		Label:           part.Label,
		Score:           score,
		MaxPoints:       part.Points,
		RubricBreakdown: ev.RubricBreakdown,
		Penalties:       penalties,
		Feedback:        joinFeedback(ev),
	}
}

// partsOf returns the question's rubric parts, synthesizing a single part for
// non-decomposed questions so both shapes take the same path.
func partsOf(q *models.Question) []models.RubricPart {
	if len(q.Parts) > 0 {
		return q.Parts
	}
	return []models.RubricPart{{
		Label:  "response",
		Points: q.MaxPoints,
		Prompt: q.Content,
	}}
}

// submissionFor finds the learner's text for a part label, falling back to
// the raw submission for the synthetic single part.
func submissionFor(ans *models.FreeResponseAnswer, label string) string {
	for _, p := range ans.Parts {
		if p.Label == label {
			return p.Text
		}
	}
	if label == "response" {
		return ans.Submission
	}
	return ""
}

func isBlankSubmission(ans *models.FreeResponseAnswer, parts []models.RubricPart) bool {
	for _, part := range parts {
		if strings.TrimSpace(submissionFor(ans, part.Label)) != "" {
			return false
		}
	}
	return true
}

func zeroPartScores(parts []models.RubricPart) []models.PartScore {
	out := make([]models.PartScore, len(parts))
	for i, part := range parts {
		out[i] = models.PartScore{
			Label:     part.Label,
			Score:     0,
			MaxPoints: part.Points,
			Feedback:  FeedbackNoSubmission,
		}
	}
	return out
}

func joinFeedback(ev *Evaluation) string {
	sections := make([]string, 0, 3)
	if ev.Feedback != "" {
		sections = append(sections, ev.Feedback)
	}
	if len(ev.Strengths) > 0 {
		sections = append(sections, "Strengths: "+strings.Join(ev.Strengths, "; "))
	}
	if len(ev.Improvements) > 0 {
		sections = append(sections, "Improve: "+strings.Join(ev.Improvements, "; "))
	}
	return strings.Join(sections, " ")
}
