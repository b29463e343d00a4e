package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-assess-api/internal/grading"
	"github.com/noah-isme/exam-assess-api/internal/models"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
)

type markRepo interface {
	Upsert(ctx context.Context, mark *models.MarkRecord) error
	Find(ctx context.Context, examID, studentID, subjectID string) (*models.MarkRecord, error)
	FetchForStudentExam(ctx context.Context, examID, studentID string) ([]models.MarkRecord, error)
}

type examDefinitionReader interface {
	ExamSubjects(ctx context.Context, examID, classID string) ([]models.ExamSubject, error)
}

type markRosterReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListActiveByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type summaryRecomputer interface {
	Recompute(ctx context.Context, examID, studentID string) error
}

// UpsertMarkRequest is a single teacher-entered mark.
type UpsertMarkRequest struct {
	ExamID        string  `json:"exam_id" validate:"required"`
	StudentID     string  `json:"student_id" validate:"required"`
	SubjectID     string  `json:"subject_id" validate:"required"`
	MaxMarks      float64 `json:"max_marks" validate:"gt=0"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
	Remarks       *string `json:"remarks,omitempty"`
	EnteredBy     string  `json:"-"`
}

// BulkSubjectMark is one subject's entry inside a bulk payload.
type BulkSubjectMark struct {
	SubjectID     string  `json:"subject_id" validate:"required"`
	MaxMarks      float64 `json:"max_marks"`
	MarksObtained float64 `json:"marks_obtained"`
	Remarks       *string `json:"remarks,omitempty"`
}

// BulkStudentMarks groups a student's subject entries.
type BulkStudentMarks struct {
	StudentID string            `json:"student_id" validate:"required"`
	Subjects  []BulkSubjectMark `json:"subjects" validate:"required,dive"`
}

// BulkMarksRequest is the dominant teacher bulk-entry payload: one class,
// one exam, many students.
type BulkMarksRequest struct {
	ExamID    string             `json:"exam_id" validate:"required"`
	ClassID   string             `json:"class_id" validate:"required"`
	Students  []BulkStudentMarks `json:"students" validate:"required,dive"`
	EnteredBy string             `json:"-"`
}

// MarkService owns mark entry and validation and triggers summary
// recomputation after every successful write.
type MarkService struct {
	marks     markRepo
	exams     examDefinitionReader
	roster    markRosterReader
	summaries summaryRecomputer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	passRatio float64
}

// NewMarkService constructs MarkService.
func NewMarkService(marks markRepo, exams examDefinitionReader, roster markRosterReader, summaries summaryRecomputer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, passRatio float64) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if passRatio <= 0 || passRatio >= 1 {
		passRatio = 0.4
	}
	return &MarkService{marks: marks, exams: exams, roster: roster, summaries: summaries, metrics: metrics, validator: validate, logger: logger, passRatio: passRatio}
}

// Upsert handles single mark entry. Re-entry is allowed while the stored
// record is DRAFT or CORRECTION_REQUIRED; submitted or approved records are
// locked.
func (s *MarkService) Upsert(ctx context.Context, req UpsertMarkRequest) (*models.MarkRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if req.MarksObtained > req.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("marks obtained %.2f exceed max marks %.2f for subject %s student %s", req.MarksObtained, req.MaxMarks, req.SubjectID, req.StudentID))
	}

	student, err := s.roster.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", req.StudentID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	subjects, err := s.exams.ExamSubjects(ctx, req.ExamID, student.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam subjects")
	}
	config := findExamSubject(subjects, req.SubjectID)
	if config == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not configured for exam %s", req.SubjectID, req.ExamID))
	}

	existing, err := s.marks.Find(ctx, req.ExamID, req.StudentID, req.SubjectID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect existing mark")
	}
	if existing != nil && !existing.ReviewStatus.Editable() {
		return nil, appErrors.Clone(appErrors.ErrMarkLocked, fmt.Sprintf("mark for subject %s student %s is %s", req.SubjectID, req.StudentID, existing.ReviewStatus))
	}

	mark := s.buildRecord(req.ExamID, req.StudentID, req.EnteredBy, config, BulkSubjectMark{
		SubjectID:     req.SubjectID,
		MaxMarks:      req.MaxMarks,
		MarksObtained: req.MarksObtained,
		Remarks:       req.Remarks,
	})
	if existing != nil {
		mark.ID = existing.ID
		mark.ReviewStatus = existing.ReviewStatus
		mark.CreatedAt = existing.CreatedAt
	}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert mark")
	}
	s.metrics.RecordMarksSaved(1)
	s.recomputeBestEffort(ctx, req.ExamID, req.StudentID)
	return mark, nil
}

// BulkUpsert ingests a class-shaped batch with partial-success semantics:
// rows failing validation are reported with their identity while the rest
// are persisted. Summaries are recomputed once per touched student after
// the loop.
func (s *MarkService) BulkUpsert(ctx context.Context, req BulkMarksRequest) (*models.BulkMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk mark payload")
	}

	subjects, err := s.exams.ExamSubjects(ctx, req.ExamID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam subjects")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("exam %s has no subjects for class %s", req.ExamID, req.ClassID))
	}

	students, err := s.roster.ListActiveByClass(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class roster")
	}
	rosterSet := make(map[string]struct{}, len(students))
	for _, student := range students {
		rosterSet[student.ID] = struct{}{}
	}

	result := &models.BulkMarkResult{Saved: []models.MarkRecord{}, Errors: []models.BulkMarkError{}}
	touched := make(map[string]struct{})

	for _, row := range req.Students {
		if _, ok := rosterSet[row.StudentID]; !ok {
			result.Errors = append(result.Errors, models.BulkMarkError{StudentID: row.StudentID, Error: "student not in class roster"})
			continue
		}
		for _, entry := range row.Subjects {
			mark, reason := s.saveBulkEntry(ctx, req, row.StudentID, entry, subjects)
			if reason != "" {
				result.Errors = append(result.Errors, models.BulkMarkError{StudentID: row.StudentID, SubjectID: entry.SubjectID, Error: reason})
				continue
			}
			result.Saved = append(result.Saved, *mark)
			touched[row.StudentID] = struct{}{}
		}
	}

	for studentID := range touched {
		s.recomputeBestEffort(ctx, req.ExamID, studentID)
	}

	s.metrics.RecordMarksSaved(len(result.Saved))
	s.metrics.RecordMarkRowErrors(len(result.Errors))
	return result, nil
}

// FetchForStudentExam returns a student's marks for one exam.
func (s *MarkService) FetchForStudentExam(ctx context.Context, examID, studentID string) ([]models.MarkRecord, error) {
	marks, err := s.marks.FetchForStudentExam(ctx, examID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch marks")
	}
	return marks, nil
}

// saveBulkEntry validates and persists one bulk row, returning the stored
// record or a rejection reason.
func (s *MarkService) saveBulkEntry(ctx context.Context, req BulkMarksRequest, studentID string, entry BulkSubjectMark, subjects []models.ExamSubject) (*models.MarkRecord, string) {
	config := findExamSubject(subjects, entry.SubjectID)
	if config == nil {
		return nil, fmt.Sprintf("subject %s not configured for exam", entry.SubjectID)
	}
	if entry.MaxMarks <= 0 {
		entry.MaxMarks = config.MaxMarks
	}
	if entry.MarksObtained < 0 || entry.MarksObtained > entry.MaxMarks {
		return nil, fmt.Sprintf("marks obtained %.2f out of range [0, %.2f]", entry.MarksObtained, entry.MaxMarks)
	}

	existing, err := s.marks.Find(ctx, req.ExamID, studentID, entry.SubjectID)
	if err != nil && err != sql.ErrNoRows {
		return nil, "failed to inspect existing mark"
	}
	if existing != nil && !existing.ReviewStatus.Editable() {
		return nil, fmt.Sprintf("mark is %s and locked for editing", existing.ReviewStatus)
	}

	mark := s.buildRecord(req.ExamID, studentID, req.EnteredBy, config, entry)
	if existing != nil {
		mark.ID = existing.ID
		mark.ReviewStatus = existing.ReviewStatus
		mark.CreatedAt = existing.CreatedAt
	}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		s.logger.Error("bulk mark upsert failed",
			zap.String("exam_id", req.ExamID),
			zap.String("student_id", studentID),
			zap.String("subject_id", entry.SubjectID),
			zap.Error(err))
		return nil, "failed to persist mark"
	}
	return mark, ""
}

// buildRecord derives percentage, grade and passing status via the grade
// policy. The passing threshold is the exam-subject passing mark when
// configured, otherwise the default ratio of max marks.
func (s *MarkService) buildRecord(examID, studentID, enteredBy string, config *models.ExamSubject, entry BulkSubjectMark) *models.MarkRecord {
	threshold := grading.DefaultPassingMarks(entry.MaxMarks, s.passRatio)
	if config.PassingMarks != nil {
		threshold = *config.PassingMarks
	}
	pct := grading.Round2(grading.Percentage(entry.MarksObtained, entry.MaxMarks))
	passing := models.PassingStatusFail
	if grading.Passed(entry.MarksObtained, threshold) {
		passing = models.PassingStatusPass
	}
	return &models.MarkRecord{
		ExamID:        examID,
		StudentID:     studentID,
		SubjectID:     entry.SubjectID,
		MaxMarks:      entry.MaxMarks,
		MarksObtained: entry.MarksObtained,
		Percentage:    pct,
		Grade:         grading.GradeFromPercentage(pct),
		PassingStatus: passing,
		Remarks:       entry.Remarks,
		EnteredBy:     enteredBy,
		ReviewStatus:  models.ReviewStatusDraft,
	}
}

// recomputeBestEffort refreshes the student's summary after a mark write.
// The mark itself is already durable; a recompute failure degrades to a
// warning and self-heals on the next write to the same (exam, student).
func (s *MarkService) recomputeBestEffort(ctx context.Context, examID, studentID string) {
	if err := s.summaries.Recompute(ctx, examID, studentID); err != nil {
		s.logger.Warn("summary recompute failed after mark write",
			zap.String("exam_id", examID),
			zap.String("student_id", studentID),
			zap.Error(err))
	}
}

func findExamSubject(subjects []models.ExamSubject, subjectID string) *models.ExamSubject {
	for i := range subjects {
		if subjects[i].SubjectID == subjectID {
			return &subjects[i]
		}
	}
	return nil
}
