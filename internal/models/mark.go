package models

import "time"

// ReviewStatus tracks a mark record through the review workflow.
type ReviewStatus string

const (
	ReviewStatusDraft      ReviewStatus = "DRAFT"
	ReviewStatusSubmitted  ReviewStatus = "SUBMITTED"
	ReviewStatusCorrection ReviewStatus = "CORRECTION_REQUIRED"
	ReviewStatusApproved   ReviewStatus = "APPROVED"
)

// Editable reports whether marks may still be re-entered in this status.
func (s ReviewStatus) Editable() bool {
	return s == ReviewStatusDraft || s == ReviewStatusCorrection
}

// PassingStatus is the per-subject pass/fail outcome.
type PassingStatus string

const (
	PassingStatusPass PassingStatus = "PASS"
	PassingStatusFail PassingStatus = "FAIL"
)

// MarkRecord is one row per (exam, student, subject). Percentage, grade and
// passing status are always derived from the two marks fields.
type MarkRecord struct {
	ID            string        `db:"id" json:"id"`
	ExamID        string        `db:"exam_id" json:"exam_id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	SubjectID     string        `db:"subject_id" json:"subject_id"`
	MaxMarks      float64       `db:"max_marks" json:"max_marks"`
	MarksObtained float64       `db:"marks_obtained" json:"marks_obtained"`
	Percentage    float64       `db:"percentage" json:"percentage"`
	Grade         string        `db:"grade" json:"grade"`
	PassingStatus PassingStatus `db:"passing_status" json:"passing_status"`
	Remarks       *string       `db:"remarks" json:"remarks,omitempty"`
	EnteredBy     string        `db:"entered_by" json:"entered_by"`
	ReviewStatus  ReviewStatus  `db:"review_status" json:"review_status"`
	ReviewRemark  *string       `db:"review_remark" json:"review_remark,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// MarkFilter scopes mark queries.
type MarkFilter struct {
	ExamID    string
	StudentID string
	SubjectID string
	Statuses  []ReviewStatus
}

// BulkMarkError identifies a rejected row within a bulk payload.
type BulkMarkError struct {
	StudentID string `json:"student_id"`
	SubjectID string `json:"subject_id,omitempty"`
	Error     string `json:"error"`
}

// BulkMarkResult reports partial-success outcomes of a bulk ingestion.
type BulkMarkResult struct {
	Saved  []MarkRecord    `json:"saved"`
	Errors []BulkMarkError `json:"errors"`
}

// MissingMark identifies a (student, subject) pair without a mark record,
// enumerated when a submit precondition fails.
type MissingMark struct {
	StudentID string `json:"student_id"`
	SubjectID string `json:"subject_id"`
}
