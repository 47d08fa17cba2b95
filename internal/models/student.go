package models

// DefaultCourse is assigned when an imported record carries no course label.
const DefaultCourse = "Other"

// CourseOptions is the fixed set of course/program labels offered by the UI.
// Storage does not enforce membership; validation beyond required fields is
// out of scope.
var CourseOptions = []string{
	"Computer Science",
	"Engineering",
	"Business",
	"Arts",
	"Science",
	DefaultCourse,
}

// Student is a single roster record. ID is the surrogate key assigned by the
// database; StudentID is the unique business key used for update and delete.
type Student struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	StudentID string  `db:"student_id" json:"student_id"`
	Course    string  `db:"course" json:"course"`
	GPA       float64 `db:"gpa" json:"gpa"`
	Email     string  `db:"email" json:"email"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search string
}
