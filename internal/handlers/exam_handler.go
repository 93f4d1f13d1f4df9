package handlers

import (
	"context"
	"errors"
	"net/http"

	"assessment-service/internal/models"
	"assessment-service/internal/selection"
	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	Service *service.ExamService
}

func NewExamHandler(s *service.ExamService) *ExamHandler {
	return &ExamHandler{Service: s}
}

// StartExam composes a question set and opens an attempt. An under-supplied
// pool is a conflict naming the short stratum; no attempt is created.
func (h *ExamHandler) StartExam(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	started, err := h.Service.StartExam(context.Background(), userID)
	if err != nil {
		var poolErr *selection.InsufficientPoolError
		if errors.As(err, &poolErr) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     poolErr.Error(),
				"stratum":   poolErr.Stratum,
				"required":  poolErr.Required,
				"available": poolErr.Available,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, started)
}

// SubmitObjectiveAnswer records one objective answer on an open attempt.
func (h *ExamHandler) SubmitObjectiveAnswer(c *gin.Context) {
	attemptID := c.Param("id")
	var req struct {
		QuestionID       string `json:"question_id" binding:"required"`
		Answer           string `json:"answer"`
		TimeSpentSeconds int    `json:"time_spent_seconds"`
		FlagForReview    bool   `json:"flag_for_review"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	err := h.Service.SubmitObjectiveAnswer(context.Background(), attemptID, req.QuestionID, req.Answer, req.TimeSpentSeconds, req.FlagForReview)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// SubmitFreeResponse records a free-response submission on an open attempt.
func (h *ExamHandler) SubmitFreeResponse(c *gin.Context) {
	attemptID := c.Param("id")
	var req struct {
		QuestionID string                `json:"question_id" binding:"required"`
		Submission string                `json:"submission"`
		Parts      []models.PartResponse `json:"parts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	err := h.Service.SubmitFreeResponse(context.Background(), attemptID, req.QuestionID, req.Submission, req.Parts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// SubmitExam closes the attempt. The response carries the synchronous
// objective score; free-response grading continues in the background.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	attempt, err := h.Service.SubmitExam(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempt":          attempt,
		"grading_complete": attempt.Status == models.AttemptGraded,
	})
}

// GetResults is the poll surface while grading runs.
func (h *ExamHandler) GetResults(c *gin.Context) {
	results, err := h.Service.GetResults(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ListAttempts returns the learner's exam history.
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}
	attempts, err := h.Service.ListAttempts(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// PoolReport shows per-stratum eligible counts for the exam blueprint.
func (h *ExamHandler) PoolReport(c *gin.Context) {
	report, err := h.Service.PoolReport(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pool": report})
}
