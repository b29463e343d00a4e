package models

import "time"

// Exam is a defined assessment event scoped to one or more classes.
type Exam struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ExamSubject maps a subject into an exam with its marking scheme. A nil
// PassingMarks falls back to the configured default pass ratio.
type ExamSubject struct {
	ID           string   `db:"id" json:"id"`
	ExamID       string   `db:"exam_id" json:"exam_id"`
	ClassID      string   `db:"class_id" json:"class_id"`
	SubjectID    string   `db:"subject_id" json:"subject_id"`
	SubjectName  string   `db:"subject_name" json:"subject_name"`
	MaxMarks     float64  `db:"max_marks" json:"max_marks"`
	PassingMarks *float64 `db:"passing_marks" json:"passing_marks,omitempty"`
}
