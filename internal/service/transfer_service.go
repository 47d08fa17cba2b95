package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/dinu-sreekumar/studentms/internal/models"
	"github.com/dinu-sreekumar/studentms/internal/repository"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
	"github.com/dinu-sreekumar/studentms/pkg/export"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatPDF   = "pdf"
)

var exportHeaders = []string{"name", "student_id", "course", "gpa", "email"}

// ImportSummary reports the outcome of a bulk import. Partial success is
// normal; one bad record never aborts the batch.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportFile is a rendered export payload ready to be served.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// incomingStudent is the loosely-typed shape accepted on import. Only name
// and student_id are mandatory; the rest carry defaults.
type incomingStudent struct {
	Name      string  `json:"name"`
	StudentID string  `json:"student_id"`
	Course    string  `json:"course"`
	GPA       float64 `json:"gpa"`
	Email     string  `json:"email"`
}

// exportStudent is the five visible roster columns; the surrogate id stays
// internal and is reassigned on re-import.
type exportStudent struct {
	Name      string  `json:"name"`
	StudentID string  `json:"student_id"`
	Course    string  `json:"course"`
	GPA       float64 `json:"gpa"`
	Email     string  `json:"email"`
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type jsonlRenderer interface {
	Render(records []any) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// TransferService converts between the roster table and bulk payloads.
type TransferService struct {
	repo   studentRepository
	csv    csvRenderer
	jsonl  jsonlRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewTransferService constructs a TransferService.
func NewTransferService(repo studentRepository, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		jsonl:  export.NewJSONLExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ImportJSON ingests a JSON array of student objects. A payload that is not
// an array of objects aborts the whole import with a single malformed-payload
// error; individual record failures are isolated and reported per record.
func (s *TransferService) ImportJSON(ctx context.Context, payload []byte) (*ImportSummary, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, appErrors.Clone(appErrors.ErrMalformedPayload, "expected a JSON array of student objects")
	}
	return s.importRecords(ctx, raw)
}

// ImportJSONL ingests line-delimited JSON, one student object per line.
// Blank lines are skipped; malformed lines count as failed records.
func (s *TransferService) ImportJSONL(ctx context.Context, payload []byte) (*ImportSummary, error) {
	var records []json.RawMessage
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, cp)
	}
	if err := scanner.Err(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrMalformedPayload, "unreadable JSONL payload")
	}
	return s.importRecords(ctx, records)
}

func (s *TransferService) importRecords(ctx context.Context, records []json.RawMessage) (*ImportSummary, error) {
	summary := &ImportSummary{}
	for i, raw := range records {
		var rec incomingStudent
		if err := json.Unmarshal(raw, &rec); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("record %d: not a student object", i+1))
			continue
		}
		if rec.Name == "" || rec.StudentID == "" {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("record %d: name and student_id are required", i+1))
			continue
		}
		if rec.Course == "" {
			rec.Course = models.DefaultCourse
		}
		student := &models.Student{
			Name:      rec.Name,
			StudentID: rec.StudentID,
			Course:    rec.Course,
			GPA:       rec.GPA,
			Email:     rec.Email,
		}
		if err := s.repo.Create(ctx, student); err != nil {
			summary.Failed++
			if repository.IsUniqueViolation(err) {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s (%s): student id already exists", rec.Name, rec.StudentID))
			} else {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s (%s): storage error", rec.Name, rec.StudentID))
				s.logger.Error("import record failed", zap.String("student_id", rec.StudentID), zap.Error(err))
			}
			continue
		}
		summary.Imported++
	}
	s.logger.Info("import finished", zap.Int("imported", summary.Imported), zap.Int("failed", summary.Failed))
	return summary, nil
}

// Export renders the full current roster in the requested format. The dataset
// is regenerated from a fresh read on every call.
func (s *TransferService) Export(ctx context.Context, format string) (*ExportFile, error) {
	students, err := s.repo.List(ctx, models.StudentFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read roster for export")
	}

	switch format {
	case FormatCSV:
		data, err := s.csv.Render(buildDataset(students))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportFile{Name: "students.csv", ContentType: "text/csv", Data: data}, nil
	case FormatJSON:
		data, err := json.MarshalIndent(toExportRecords(students), "", "    ")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render json export")
		}
		return &ExportFile{Name: "students.json", ContentType: "application/json", Data: data}, nil
	case FormatJSONL:
		records := make([]any, 0, len(students))
		for _, rec := range toExportRecords(students) {
			records = append(records, rec)
		}
		data, err := s.jsonl.Render(records)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render jsonl export")
		}
		return &ExportFile{Name: "students.jsonl", ContentType: "application/x-ndjson", Data: data}, nil
	case FormatPDF:
		data, err := s.pdf.Render(buildDataset(students), "Student Roster")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
		}
		return &ExportFile{Name: "students.pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func toExportRecords(students []models.Student) []exportStudent {
	records := make([]exportStudent, 0, len(students))
	for _, s := range students {
		records = append(records, exportStudent{
			Name:      s.Name,
			StudentID: s.StudentID,
			Course:    s.Course,
			GPA:       s.GPA,
			Email:     s.Email,
		})
	}
	return records
}

func buildDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, map[string]string{
			"name":       s.Name,
			"student_id": s.StudentID,
			"course":     s.Course,
			"gpa":        strconv.FormatFloat(s.GPA, 'f', -1, 64),
			"email":      s.Email,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
