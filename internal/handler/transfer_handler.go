package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dinu-sreekumar/studentms/internal/service"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
	"github.com/dinu-sreekumar/studentms/pkg/response"
)

// maxImportBytes bounds bulk import payloads.
const maxImportBytes = 10 << 20

type transferService interface {
	ImportJSON(ctx context.Context, payload []byte) (*service.ImportSummary, error)
	ImportJSONL(ctx context.Context, payload []byte) (*service.ImportSummary, error)
	Export(ctx context.Context, format string) (*service.ExportFile, error)
}

// TransferHandler exposes bulk import and export endpoints.
type TransferHandler struct {
	transfers transferService
}

// NewTransferHandler constructs TransferHandler.
func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Import godoc
// @Summary Bulk import students
// @Tags Transfer
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedPayload.Code, http.StatusBadRequest, "unreadable request body"))
		return
	}
	if len(payload) > maxImportBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "import payload too large"))
		return
	}

	var summary *service.ImportSummary
	if isJSONL(c.ContentType()) {
		summary, err = h.transfers.ImportJSONL(c.Request.Context(), payload)
	} else {
		summary, err = h.transfers.ImportJSON(c.Request.Context(), payload)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Export godoc
// @Summary Export the full roster
// @Tags Transfer
// @Produce json
// @Param format query string false "csv, json, jsonl or pdf (default csv)"
// @Success 200 {file} file
// @Router /students/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", service.FormatCSV))
	file, err := h.transfers.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func isJSONL(contentType string) bool {
	switch contentType {
	case "application/x-ndjson", "application/jsonl", "application/x-jsonlines":
		return true
	}
	return false
}
