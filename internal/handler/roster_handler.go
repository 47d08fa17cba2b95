package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinu-sreekumar/studentms/internal/service"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
	"github.com/dinu-sreekumar/studentms/pkg/response"
)

type clearService interface {
	RequestClear(ctx context.Context) (*service.ClearTicket, error)
	ConfirmClear(ctx context.Context, token string) (*service.ClearTicket, error)
	CancelClear(ctx context.Context, token string) (*service.ClearTicket, error)
}

// ClearConfirmRequest echoes the token from a prior clear request.
type ClearConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

// RosterHandler exposes the destructive clear-all flow. Clearing is two-step:
// request a ticket, then confirm (or cancel) with its token.
type RosterHandler struct {
	clears clearService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(clears clearService) *RosterHandler {
	return &RosterHandler{clears: clears}
}

// RequestClear godoc
// @Summary Request a roster clear
// @Tags Roster
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /roster/clear [post]
func (h *RosterHandler) RequestClear(c *gin.Context) {
	ticket, err := h.clears.RequestClear(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, ticket)
}

// ConfirmClear godoc
// @Summary Confirm a pending roster clear
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body ClearConfirmRequest true "Confirmation token"
// @Success 200 {object} response.Envelope
// @Router /roster/clear/confirm [post]
func (h *RosterHandler) ConfirmClear(c *gin.Context) {
	var req ClearConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "token is required"))
		return
	}
	ticket, err := h.clears.ConfirmClear(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket)
}

// CancelClear godoc
// @Summary Cancel a pending roster clear
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body ClearConfirmRequest true "Confirmation token"
// @Success 200 {object} response.Envelope
// @Router /roster/clear/cancel [post]
func (h *RosterHandler) CancelClear(c *gin.Context) {
	var req ClearConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "token is required"))
		return
	}
	ticket, err := h.clears.CancelClear(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket)
}
