package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinu-sreekumar/studentms/internal/models"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
	"github.com/dinu-sreekumar/studentms/pkg/response"
)

type advisorService interface {
	Ask(ctx context.Context, sessionID, question string) (string, string, error)
	Review(ctx context.Context, studentID string) (string, error)
	Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Enabled() bool
}

// AskRequest is a free-text question about the roster. Omitting session_id
// starts a fresh chat session.
type AskRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question" binding:"required"`
}

// AskResponse carries the generated answer and the session it belongs to.
type AskResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// ReviewResponse carries a generated performance review.
type ReviewResponse struct {
	StudentID string `json:"student_id"`
	Review    string `json:"review"`
}

// AdvisorHandler exposes the AI advisor endpoints.
type AdvisorHandler struct {
	advisor advisorService
}

// NewAdvisorHandler constructs AdvisorHandler.
func NewAdvisorHandler(advisor advisorService) *AdvisorHandler {
	return &AdvisorHandler{advisor: advisor}
}

// Ask godoc
// @Summary Ask a question about the roster
// @Tags Advisor
// @Accept json
// @Produce json
// @Param payload body AskRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Router /advisor/ask [post]
func (h *AdvisorHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "question is required"))
		return
	}
	sessionID, answer, err := h.advisor.Ask(c.Request.Context(), req.SessionID, req.Question)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, AskResponse{SessionID: sessionID, Answer: answer})
}

// Review godoc
// @Summary Generate a performance review for one student
// @Tags Advisor
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /advisor/reviews/{studentId} [post]
func (h *AdvisorHandler) Review(c *gin.Context) {
	studentID := c.Param("studentId")
	review, err := h.advisor.Review(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ReviewResponse{StudentID: studentID, Review: review})
}

// Transcript godoc
// @Summary Fetch the chat transcript for a session
// @Tags Advisor
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /advisor/sessions/{sessionId} [get]
func (h *AdvisorHandler) Transcript(c *gin.Context) {
	messages, err := h.advisor.Transcript(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, map[string]interface{}{"advisor_enabled": h.advisor.Enabled()})
}
