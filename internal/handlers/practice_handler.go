package handlers

import (
	"context"
	"errors"
	"net/http"

	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PracticeHandler struct {
	Service *service.PracticeService
}

func NewPracticeHandler(s *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{Service: s}
}

// StartPractice opens a practice session. Empty unit_id means mixed-unit
// practice.
func (h *PracticeHandler) StartPractice(c *gin.Context) {
	var req struct {
		UnitID  string `json:"unit_id"`
		TopicID string `json:"topic_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	session := h.Service.StartPractice(userID, req.UnitID, req.TopicID)
	c.JSON(http.StatusCreated, gin.H{
		"session":   session,
		"next_step": "Call /next to get the first question",
	})
}

// NextQuestion serves the next question for a session. A null question means
// the pool is exhausted and the session is complete.
func (h *PracticeHandler) NextQuestion(c *gin.Context) {
	sessionID := c.Param("id")
	question, err := h.Service.NextQuestion(context.Background(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if question == nil {
		c.JSON(http.StatusOK, gin.H{"question": nil, "session_complete": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question, "session_complete": false})
}

// SubmitAnswer grades one practice answer and returns the updated
// progression view.
func (h *PracticeHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")
	var req struct {
		QuestionID       string `json:"question_id" binding:"required"`
		Answer           string `json:"answer"`
		TimeSpentSeconds int    `json:"time_spent_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	outcome, err := h.Service.SubmitAnswer(context.Background(), sessionID, req.QuestionID, req.Answer, req.TimeSpentSeconds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// EndSession destroys the session and returns its summary.
func (h *PracticeHandler) EndSession(c *gin.Context) {
	summary, err := h.Service.EndSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Progress lists the learner's progression records.
func (h *PracticeHandler) Progress(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}
	records, err := h.Service.Progress(context.Background(), userID, c.Query("unit_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// DueReviews lists scopes due for spaced review.
func (h *PracticeHandler) DueReviews(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}
	records, err := h.Service.DueReviews(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"due": records})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
