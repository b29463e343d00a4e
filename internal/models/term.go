package models

// TermSubjectResult is a per-subject weighted outcome within a term. The
// weight denominator covers only the exams where the subject has a
// submitted or approved mark, so a subject missing from one exam
// renormalizes instead of collapsing to zero.
type TermSubjectResult struct {
	SubjectID          string  `json:"subject_id"`
	WeightedPercentage float64 `json:"weighted_percentage"`
	Grade              string  `json:"grade"`
	ExamsCounted       int     `json:"exams_counted"`
}

// TermStudentResult is one student's consolidated term outcome.
type TermStudentResult struct {
	StudentID         string              `json:"student_id"`
	StudentName       string              `json:"student_name"`
	AdmissionNo       string              `json:"admission_no"`
	Subjects          []TermSubjectResult `json:"subjects"`
	OverallPercentage float64             `json:"overall_percentage"`
	OverallGrade      string              `json:"overall_grade"`
	RankInClass       int                 `json:"rank_in_class"`
}

// TermResult is the ephemeral output of the term weighting calculator.
// It is recomputed on every call and never persisted.
type TermResult struct {
	ClassID  string              `json:"class_id"`
	ExamIDs  []string            `json:"exam_ids"`
	Weights  []float64           `json:"weights"`
	Students []TermStudentResult `json:"students"`
}
