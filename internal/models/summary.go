package models

import "time"

// ResultStatus is the overall pass/fail outcome of an exam summary.
type ResultStatus string

const (
	ResultStatusPass ResultStatus = "PASS"
	ResultStatusFail ResultStatus = "FAIL"
)

// ExamSummary is the derived per-(exam, student) rollup. It is recomputed
// from the full current set of mark records, never hand-edited or patched
// incrementally.
type ExamSummary struct {
	ID                string       `db:"id" json:"id"`
	ExamID            string       `db:"exam_id" json:"exam_id"`
	StudentID         string       `db:"student_id" json:"student_id"`
	TotalMarks        float64      `db:"total_marks" json:"total_marks"`
	TotalMaxMarks     float64      `db:"total_max_marks" json:"total_max_marks"`
	OverallPercentage float64      `db:"overall_percentage" json:"overall_percentage"`
	OverallGrade      string       `db:"overall_grade" json:"overall_grade"`
	ResultStatus      ResultStatus `db:"result_status" json:"result_status"`
	SubjectsPassed    int          `db:"subjects_passed" json:"subjects_passed"`
	SubjectsFailed    int          `db:"subjects_failed" json:"subjects_failed"`
	RankInClass       *int         `db:"rank_in_class" json:"rank_in_class,omitempty"`
	ComputedAt        time.Time    `db:"computed_at" json:"computed_at"`
}

// RankAssignment pairs a summary with its computed cohort rank.
type RankAssignment struct {
	StudentID string `json:"student_id"`
	Rank      int    `json:"rank"`
}

// CohortRankingRow is the enriched ranking view returned to callers.
type CohortRankingRow struct {
	StudentID         string  `db:"student_id" json:"student_id"`
	StudentName       string  `db:"student_name" json:"student_name"`
	AdmissionNo       string  `db:"admission_no" json:"admission_no"`
	OverallPercentage float64 `db:"overall_percentage" json:"overall_percentage"`
	OverallGrade      string  `db:"overall_grade" json:"overall_grade"`
	ResultStatus      string  `db:"result_status" json:"result_status"`
	RankInClass       *int    `db:"rank_in_class" json:"rank_in_class,omitempty"`
}
