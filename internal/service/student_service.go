package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dinu-sreekumar/studentms/internal/models"
	"github.com/dinu-sreekumar/studentms/internal/repository"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, priorStudentID string, student *models.Student) (int64, error)
	Delete(ctx context.Context, studentID string) (int64, error)
	Clear(ctx context.Context) error
}

// CreateStudentRequest holds payload for adding a student. Only name and
// student_id are mandatory; everything else is free-form by design.
type CreateStudentRequest struct {
	Name      string  `json:"name" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	Course    string  `json:"course"`
	GPA       float64 `json:"gpa"`
	Email     string  `json:"email"`
}

// UpdateStudentRequest holds a full-row replacement. The record is addressed
// by its prior student_id (URL path); StudentID here may be a new value.
type UpdateStudentRequest struct {
	Name      string  `json:"name" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	Course    string  `json:"course"`
	GPA       float64 `json:"gpa"`
	Email     string  `json:"email"`
}

// StudentService handles roster use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns every student matching the filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student by business key.
func (s *StudentService) Get(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}
	return student, nil
}

// Create inserts a new roster record. Duplicate student IDs are not
// pre-checked; the storage unique constraint is the source of truth.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and student_id are required")
	}
	student := &models.Student{
		Name:      req.Name,
		StudentID: req.StudentID,
		Course:    req.Course,
		GPA:       req.GPA,
		Email:     req.Email,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.StudentID))
	return student, nil
}

// Update replaces all fields of the record addressed by its prior student_id.
// A missing record is an error rather than the silent no-op of the legacy
// dashboard.
func (s *StudentService) Update(ctx context.Context, priorStudentID string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and student_id are required")
	}
	student := &models.Student{
		Name:      req.Name,
		StudentID: req.StudentID,
		Course:    req.Course,
		GPA:       req.GPA,
		Email:     req.Email,
	}
	affected, err := s.repo.Update(ctx, priorStudentID, student)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "new student id already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update student")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	updated, err := s.repo.FindByStudentID(ctx, student.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to reload student")
	}
	return updated, nil
}

// Delete removes one record. Deleting a missing student_id is still success;
// the roster ends in the requested state either way.
func (s *StudentService) Delete(ctx context.Context, studentID string) error {
	affected, err := s.repo.Delete(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete student")
	}
	if affected == 0 {
		s.logger.Debug("delete matched no record", zap.String("student_id", studentID))
	}
	return nil
}

// ClearAll removes every roster record. Callers must gate this behind the
// two-step confirmation flow.
func (s *StudentService) ClearAll(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to clear roster")
	}
	s.logger.Warn("roster cleared")
	return nil
}
