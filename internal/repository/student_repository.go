package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dinu-sreekumar/studentms/internal/models"
)

const studentSchema = `CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    student_id TEXT NOT NULL UNIQUE,
    course TEXT,
    gpa REAL,
    email TEXT
)`

// StudentRepository manages persistence for student roster records. Every
// operation is a single statement through the shared pooled handle.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Init ensures the students table exists. Safe to call repeatedly.
func (r *StudentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, studentSchema); err != nil {
		return fmt.Errorf("init students table: %w", err)
	}
	return nil
}

// List returns every student matching the filter in insertion order. An empty
// table yields an empty slice, never an error.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	query := "SELECT id, name, student_id, course, gpa, email FROM students"
	var args []interface{}
	if filter.Search != "" {
		query += " WHERE LOWER(name) LIKE ? OR LOWER(student_id) LIKE ?"
		needle := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, needle, needle)
	}
	query += " ORDER BY id"

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByStudentID fetches one record by its business key.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	const query = "SELECT id, name, student_id, course, gpa, email FROM students WHERE student_id = ?"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new roster record and backfills the surrogate ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (name, student_id, course, gpa, email)
        VALUES (:name, :student_id, :course, :gpa, :email)`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		student.ID = id
	}
	return nil
}

// Update replaces every field of the record addressed by its prior business
// key. The student_id itself may change; a collision with another record
// surfaces as a unique-constraint error from the engine, not a pre-check.
// Returns the number of rows affected.
func (r *StudentRepository) Update(ctx context.Context, priorStudentID string, student *models.Student) (int64, error) {
	const query = `UPDATE students SET name = ?, student_id = ?, course = ?, gpa = ?, email = ?
        WHERE student_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		student.Name, student.StudentID, student.Course, student.GPA, student.Email, priorStudentID)
	if err != nil {
		return 0, fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update student rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes the record matched by the business key. Returns rows affected.
func (r *StudentRepository) Delete(ctx context.Context, studentID string) (int64, error) {
	const query = "DELETE FROM students WHERE student_id = ?"
	res, err := r.db.ExecContext(ctx, query, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete student rows affected: %w", err)
	}
	return affected, nil
}

// Clear removes every roster record unconditionally.
func (r *StudentRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
