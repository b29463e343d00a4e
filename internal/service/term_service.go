package service

import (
	"context"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-assess-api/internal/grading"
	"github.com/noah-isme/exam-assess-api/internal/models"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
)

type termMarkReader interface {
	FetchForExams(ctx context.Context, examIDs []string, studentIDs []string, statuses []models.ReviewStatus) ([]models.MarkRecord, error)
}

// ComputeTermRequest combines multiple exams into one weighted result.
// Weights pair positionally with exam IDs and must sum to 100.
type ComputeTermRequest struct {
	ClassID string    `json:"class_id" validate:"required"`
	ExamIDs []string  `json:"exam_ids" validate:"required,min=1,dive,required"`
	Weights []float64 `json:"weights" validate:"required,min=1"`
}

// TermService is the read-time term weighting calculator. Output is
// ephemeral and recomputed on every call.
type TermService struct {
	marks     termMarkReader
	roster    rosterReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	tolerance float64
}

// NewTermService constructs TermService.
func NewTermService(marks termMarkReader, roster rosterReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, tolerance float64) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tolerance <= 0 {
		tolerance = 0.01
	}
	return &TermService{marks: marks, roster: roster, metrics: metrics, validator: validate, logger: logger, tolerance: tolerance}
}

// Compute produces the weighted term result for a class. Only submitted or
// approved marks contribute; a subject absent from one of the exams
// renormalizes over the exams where it has data instead of being diluted
// by a phantom zero.
func (s *TermService) Compute(ctx context.Context, req ComputeTermRequest) (*models.TermResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	if len(req.ExamIDs) != len(req.Weights) {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "exam and weight counts differ")
	}
	var weightSum float64
	weightByExam := make(map[string]float64, len(req.ExamIDs))
	for i, examID := range req.ExamIDs {
		if req.Weights[i] < 0 || req.Weights[i] > 100 {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "weights must lie within [0, 100]")
		}
		if _, dup := weightByExam[examID]; dup {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "duplicate exam in term definition")
		}
		weightByExam[examID] = req.Weights[i]
		weightSum += req.Weights[i]
	}
	if math.Abs(weightSum-100) > s.tolerance {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "exam weights must sum to 100")
	}

	students, err := s.roster.ListActiveByClass(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class roster")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active students in class")
	}
	studentIDs := make([]string, len(students))
	for i, student := range students {
		studentIDs[i] = student.ID
	}

	marks, err := s.marks.FetchForExams(ctx, req.ExamIDs, studentIDs,
		[]models.ReviewStatus{models.ReviewStatusSubmitted, models.ReviewStatusApproved})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term marks")
	}

	type accumulator struct {
		numerator   float64
		denominator float64
		exams       int
	}
	// (student -> subject -> weighted accumulation)
	perStudent := make(map[string]map[string]*accumulator)
	for _, mark := range marks {
		weight, ok := weightByExam[mark.ExamID]
		if !ok {
			continue
		}
		subjects := perStudent[mark.StudentID]
		if subjects == nil {
			subjects = make(map[string]*accumulator)
			perStudent[mark.StudentID] = subjects
		}
		acc := subjects[mark.SubjectID]
		if acc == nil {
			acc = &accumulator{}
			subjects[mark.SubjectID] = acc
		}
		acc.numerator += grading.Percentage(mark.MarksObtained, mark.MaxMarks) * weight / 100
		acc.denominator += weight / 100
		acc.exams++
	}

	results := make([]models.TermStudentResult, 0, len(students))
	for _, student := range students {
		subjects := perStudent[student.ID]
		subjectIDs := make([]string, 0, len(subjects))
		for subjectID := range subjects {
			subjectIDs = append(subjectIDs, subjectID)
		}
		sort.Strings(subjectIDs)

		subjectResults := make([]models.TermSubjectResult, 0, len(subjectIDs))
		var pctSum float64
		for _, subjectID := range subjectIDs {
			acc := subjects[subjectID]
			if acc.denominator == 0 {
				continue
			}
			weighted := grading.Round2(acc.numerator / acc.denominator)
			subjectResults = append(subjectResults, models.TermSubjectResult{
				SubjectID:          subjectID,
				WeightedPercentage: weighted,
				Grade:              grading.GradeFromPercentage(weighted),
				ExamsCounted:       acc.exams,
			})
			pctSum += weighted
		}

		overall := 0.0
		if len(subjectResults) > 0 {
			overall = grading.Round2(pctSum / float64(len(subjectResults)))
		}
		results = append(results, models.TermStudentResult{
			StudentID:         student.ID,
			StudentName:       student.FullName,
			AdmissionNo:       student.AdmissionNo,
			Subjects:          subjectResults,
			OverallPercentage: overall,
			OverallGrade:      grading.GradeFromPercentage(overall),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].OverallPercentage != results[j].OverallPercentage {
			return results[i].OverallPercentage > results[j].OverallPercentage
		}
		return results[i].AdmissionNo < results[j].AdmissionNo
	})
	for i := range results {
		results[i].RankInClass = i + 1
	}

	s.metrics.RecordTermComputation()
	return &models.TermResult{
		ClassID:  req.ClassID,
		ExamIDs:  req.ExamIDs,
		Weights:  req.Weights,
		Students: results,
	}, nil
}
