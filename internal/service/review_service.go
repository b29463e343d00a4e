package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-assess-api/internal/models"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
)

type reviewMarkRepo interface {
	FetchForExamStudents(ctx context.Context, examID string, studentIDs []string) (map[string][]models.MarkRecord, error)
	UpdateStatus(ctx context.Context, examID string, studentIDs []string, fromStatuses []models.ReviewStatus, toStatus models.ReviewStatus, reviewRemark *string) (int64, error)
}

type reviewExamReader interface {
	ExamSubjects(ctx context.Context, examID, classID string) ([]models.ExamSubject, error)
}

type cohortRanker interface {
	RankCohort(ctx context.Context, examID, classID string) error
}

// SubmitMarksRequest moves a cohort's draft marks into review. StudentIDs
// narrows the scope to part of the class; empty means the full roster.
type SubmitMarksRequest struct {
	ExamID     string   `json:"exam_id" validate:"required"`
	ClassID    string   `json:"class_id" validate:"required"`
	StudentIDs []string `json:"student_ids,omitempty"`
}

// ApproveMarksRequest approves a cohort's submitted marks.
type ApproveMarksRequest struct {
	ExamID  string `json:"exam_id" validate:"required"`
	ClassID string `json:"class_id" validate:"required"`
}

// RequestCorrectionRequest flags a cohort's submitted marks back to
// editable with an optional reviewer remark.
type RequestCorrectionRequest struct {
	ExamID  string  `json:"exam_id" validate:"required"`
	ClassID string  `json:"class_id" validate:"required"`
	Remark  *string `json:"remark,omitempty"`
}

// SubmitResult reports the records flipped to SUBMITTED.
type SubmitResult struct {
	Submitted int64 `json:"submitted"`
	Students  int   `json:"students"`
}

// ApproveResult reports approval and ranking outcomes. RankingWarning is
// set when rank computation failed after the approval was already durable.
type ApproveResult struct {
	Approved       int64  `json:"approved"`
	RankingWarning string `json:"ranking_warning,omitempty"`
}

// ReviewService enforces the mark review state machine:
// draft -> submitted -> approved, with submitted -> correction_required ->
// submitted as the rework loop. APPROVED is terminal.
type ReviewService struct {
	marks     reviewMarkRepo
	exams     reviewExamReader
	roster    rosterReader
	summaries cohortRanker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs ReviewService.
func NewReviewService(marks reviewMarkRepo, exams reviewExamReader, roster rosterReader, summaries cohortRanker, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{marks: marks, exams: exams, roster: roster, summaries: summaries, validator: validate, logger: logger}
}

// Submit transitions draft and correction-required marks to SUBMITTED after
// verifying full subject coverage. An incomplete cohort rejects the whole
// submission with every missing (student, subject) pair enumerated; no
// partial transition occurs.
func (s *ReviewService) Submit(ctx context.Context, req SubmitMarksRequest) (*SubmitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}

	targets, err := s.resolveTargets(ctx, req.ClassID, req.StudentIDs)
	if err != nil {
		return nil, err
	}

	subjects, err := s.exams.ExamSubjects(ctx, req.ExamID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam subjects")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("exam %s has no subjects for class %s", req.ExamID, req.ClassID))
	}

	marksByStudent, err := s.marks.FetchForExamStudents(ctx, req.ExamID, targets)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort marks")
	}

	missing := coverageGaps(targets, subjects, marksByStudent)
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrPrecondition, "submission incomplete: "+formatMissing(missing))
	}

	flipped, err := s.marks.UpdateStatus(ctx, req.ExamID, targets,
		[]models.ReviewStatus{models.ReviewStatusDraft, models.ReviewStatusCorrection},
		models.ReviewStatusSubmitted, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit marks")
	}
	return &SubmitResult{Submitted: flipped, Students: len(targets)}, nil
}

// Approve flips the cohort's submitted marks to APPROVED and then computes
// cohort ranks. A ranking failure after the approval write degrades to a
// warning: the approvals are already durable and ranks can be recomputed.
func (s *ReviewService) Approve(ctx context.Context, req ApproveMarksRequest) (*ApproveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve payload")
	}

	targets, err := s.resolveTargets(ctx, req.ClassID, nil)
	if err != nil {
		return nil, err
	}

	marksByStudent, err := s.marks.FetchForExamStudents(ctx, req.ExamID, targets)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort marks")
	}
	if len(marksByStudent) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no marks recorded for exam %s class %s", req.ExamID, req.ClassID))
	}
	var unsubmitted []string
	for studentID, marks := range marksByStudent {
		for _, mark := range marks {
			if mark.ReviewStatus == models.ReviewStatusSubmitted || mark.ReviewStatus == models.ReviewStatusApproved {
				continue
			}
			unsubmitted = append(unsubmitted, fmt.Sprintf("student=%s subject=%s status=%s", studentID, mark.SubjectID, mark.ReviewStatus))
		}
	}
	if len(unsubmitted) > 0 {
		return nil, appErrors.Clone(appErrors.ErrPrecondition, "cohort not fully submitted: "+strings.Join(unsubmitted, "; "))
	}

	approved, err := s.marks.UpdateStatus(ctx, req.ExamID, targets,
		[]models.ReviewStatus{models.ReviewStatusSubmitted},
		models.ReviewStatusApproved, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve marks")
	}

	result := &ApproveResult{Approved: approved}
	if err := s.summaries.RankCohort(ctx, req.ExamID, req.ClassID); err != nil {
		s.logger.Warn("cohort ranking failed after approval",
			zap.String("exam_id", req.ExamID),
			zap.String("class_id", req.ClassID),
			zap.Error(err))
		result.RankingWarning = "marks approved but rank computation failed; rerun the summary reconciliation"
	}
	return result, nil
}

// RequestCorrection flags submitted marks back to CORRECTION_REQUIRED.
// The underlying mark values are untouched; the records simply become
// editable again.
func (s *ReviewService) RequestCorrection(ctx context.Context, req RequestCorrectionRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correction payload")
	}

	targets, err := s.resolveTargets(ctx, req.ClassID, nil)
	if err != nil {
		return 0, err
	}

	flipped, err := s.marks.UpdateStatus(ctx, req.ExamID, targets,
		[]models.ReviewStatus{models.ReviewStatusSubmitted},
		models.ReviewStatusCorrection, req.Remark)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag marks for correction")
	}
	if flipped == 0 {
		return 0, appErrors.Clone(appErrors.ErrPrecondition, fmt.Sprintf("no submitted marks for exam %s class %s", req.ExamID, req.ClassID))
	}
	return flipped, nil
}

// resolveTargets validates the requested student scope against the active
// roster, defaulting to the whole class.
func (s *ReviewService) resolveTargets(ctx context.Context, classID string, studentIDs []string) ([]string, error) {
	students, err := s.roster.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class roster")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no active students in class %s", classID))
	}
	rosterSet := make(map[string]struct{}, len(students))
	rosterIDs := make([]string, 0, len(students))
	for _, student := range students {
		rosterSet[student.ID] = struct{}{}
		rosterIDs = append(rosterIDs, student.ID)
	}
	if len(studentIDs) == 0 {
		return rosterIDs, nil
	}
	for _, id := range studentIDs {
		if _, ok := rosterSet[id]; !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not in class %s", id, classID))
		}
	}
	return studentIDs, nil
}

func coverageGaps(students []string, subjects []models.ExamSubject, marksByStudent map[string][]models.MarkRecord) []models.MissingMark {
	var missing []models.MissingMark
	for _, studentID := range students {
		have := make(map[string]struct{})
		for _, mark := range marksByStudent[studentID] {
			have[mark.SubjectID] = struct{}{}
		}
		for _, subject := range subjects {
			if _, ok := have[subject.SubjectID]; !ok {
				missing = append(missing, models.MissingMark{StudentID: studentID, SubjectID: subject.SubjectID})
			}
		}
	}
	return missing
}

func formatMissing(missing []models.MissingMark) string {
	parts := make([]string, len(missing))
	for i, m := range missing {
		parts[i] = fmt.Sprintf("student=%s subject=%s", m.StudentID, m.SubjectID)
	}
	return strings.Join(parts, "; ")
}
