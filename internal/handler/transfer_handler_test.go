package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinu-sreekumar/studentms/internal/service"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

type stubTransferService struct {
	summary    *service.ImportSummary
	file       *service.ExportFile
	err        error
	jsonCalls  int
	jsonlCalls int
	lastFormat string
}

func (s *stubTransferService) ImportJSON(ctx context.Context, payload []byte) (*service.ImportSummary, error) {
	s.jsonCalls++
	return s.summary, s.err
}

func (s *stubTransferService) ImportJSONL(ctx context.Context, payload []byte) (*service.ImportSummary, error) {
	s.jsonlCalls++
	return s.summary, s.err
}

func (s *stubTransferService) Export(ctx context.Context, format string) (*service.ExportFile, error) {
	s.lastFormat = format
	return s.file, s.err
}

func newTransferRouter(svc transferService) *gin.Engine {
	h := NewTransferHandler(svc)
	r := gin.New()
	r.POST("/students/import", h.Import)
	r.GET("/students/export", h.Export)
	return r
}

func TestTransferHandlerImportJSON(t *testing.T) {
	svc := &stubTransferService{summary: &service.ImportSummary{Imported: 2, Failed: 1}}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/import", bytes.NewBufferString(`[]`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.jsonCalls)
	assert.Zero(t, svc.jsonlCalls)
	assert.Contains(t, w.Body.String(), `"imported":2`)
}

func TestTransferHandlerImportJSONLByContentType(t *testing.T) {
	svc := &stubTransferService{summary: &service.ImportSummary{Imported: 1}}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/import", bytes.NewBufferString(`{"name":"Alice","student_id":"S1"}`))
	req.Header.Set("Content-Type", "application/x-ndjson")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.jsonlCalls)
	assert.Zero(t, svc.jsonCalls)
}

func TestTransferHandlerImportMalformed(t *testing.T) {
	svc := &stubTransferService{err: appErrors.Clone(appErrors.ErrMalformedPayload, "expected a JSON array of student objects")}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/import", bytes.NewBufferString(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w.Body)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrMalformedPayload.Code, env.Error.Code)
}

func TestTransferHandlerExportDefaultsToCSV(t *testing.T) {
	svc := &stubTransferService{file: &service.ExportFile{
		Name: "students.csv", ContentType: "text/csv", Data: []byte("name,student_id\n"),
	}}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "name,student_id\n", w.Body.String())
}

func TestTransferHandlerExportNormalisesFormat(t *testing.T) {
	svc := &stubTransferService{file: &service.ExportFile{
		Name: "students.json", ContentType: "application/json", Data: []byte("[]"),
	}}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/export?format=JSON", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "json", svc.lastFormat)
}

func TestTransferHandlerExportUnsupportedFormat(t *testing.T) {
	svc := &stubTransferService{err: appErrors.Clone(appErrors.ErrValidation, `unsupported export format "xml"`)}
	r := newTransferRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/export?format=xml", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
