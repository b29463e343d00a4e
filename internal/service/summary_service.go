package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-assess-api/internal/grading"
	"github.com/noah-isme/exam-assess-api/internal/models"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
)

type summaryMarkReader interface {
	FetchForStudentExam(ctx context.Context, examID, studentID string) ([]models.MarkRecord, error)
}

type summaryRepo interface {
	Upsert(ctx context.Context, summary *models.ExamSummary) error
	Find(ctx context.Context, examID, studentID string) (*models.ExamSummary, error)
	FetchByExamStudents(ctx context.Context, examID string, studentIDs []string) (map[string]models.ExamSummary, error)
	UpdateRanks(ctx context.Context, examID string, ranks []models.RankAssignment) error
	CohortRanking(ctx context.Context, examID, classID string) ([]models.CohortRankingRow, error)
}

type rosterReader interface {
	ListActiveByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// SummaryService recomputes per-(exam, student) rollups from the full
// current mark set and assigns cohort ranks during approval.
type SummaryService struct {
	marks     summaryMarkReader
	summaries summaryRepo
	roster    rosterReader
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewSummaryService constructs SummaryService.
func NewSummaryService(marks summaryMarkReader, summaries summaryRepo, roster rosterReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{marks: marks, summaries: summaries, roster: roster, cache: cache, metrics: metrics, logger: logger}
}

// Recompute rebuilds the summary for one (exam, student) from all of its
// current mark records. No records means no summary row.
func (s *SummaryService) Recompute(ctx context.Context, examID, studentID string) error {
	marks, err := s.marks.FetchForStudentExam(ctx, examID, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load marks for exam %s student %s", examID, studentID))
	}
	if len(marks) == 0 {
		return nil
	}

	pairs := make([]grading.MarkPair, 0, len(marks))
	passed, failed := 0, 0
	var totalMarks, totalMax float64
	for _, mark := range marks {
		pairs = append(pairs, grading.MarkPair{Obtained: mark.MarksObtained, Max: mark.MaxMarks})
		totalMarks += mark.MarksObtained
		totalMax += mark.MaxMarks
		if mark.PassingStatus == models.PassingStatusPass {
			passed++
		} else {
			failed++
		}
	}

	overallPct := grading.Round2(grading.OverallPercentage(pairs))
	resultStatus := models.ResultStatusPass
	if failed > 0 {
		resultStatus = models.ResultStatusFail
	}

	summary := &models.ExamSummary{
		ExamID:            examID,
		StudentID:         studentID,
		TotalMarks:        totalMarks,
		TotalMaxMarks:     totalMax,
		OverallPercentage: overallPct,
		OverallGrade:      grading.GradeFromPercentage(overallPct),
		ResultStatus:      resultStatus,
		SubjectsPassed:    passed,
		SubjectsFailed:    failed,
		ComputedAt:        time.Now().UTC(),
	}
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to upsert summary for exam %s student %s", examID, studentID))
	}
	s.metrics.RecordSummaryRecompute()
	if s.cache != nil {
		s.cache.Invalidate(ctx, fmt.Sprintf("exam:%s:*", examID))
	}
	return nil
}

// RecomputeCohort is the explicit reconciliation pass: it rebuilds every
// summary for the (exam, class) cohort. Summaries are normally refreshed on
// each mark write, but a crash between a mark write and its recompute can
// leave a stale row; callers needing exact views run this first.
func (s *SummaryService) RecomputeCohort(ctx context.Context, examID, classID string) (int, error) {
	students, err := s.roster.ListActiveByClass(ctx, classID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class roster")
	}
	if len(students) == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no active students in class %s", classID))
	}
	recomputed := 0
	for _, student := range students {
		if err := s.Recompute(ctx, examID, student.ID); err != nil {
			return recomputed, err
		}
		recomputed++
	}
	return recomputed, nil
}

// RankCohort orders the cohort's summaries by overall percentage descending
// and persists 1-based ranks. Ties are broken by admission number
// ascending; tied percentages still receive distinct consecutive ranks in
// that order. Only invoked from the approval flow.
func (s *SummaryService) RankCohort(ctx context.Context, examID, classID string) error {
	students, err := s.roster.ListActiveByClass(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class roster")
	}
	if len(students) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no active students in class %s", classID))
	}

	studentIDs := make([]string, 0, len(students))
	admissionNo := make(map[string]string, len(students))
	for _, student := range students {
		studentIDs = append(studentIDs, student.ID)
		admissionNo[student.ID] = student.AdmissionNo
	}

	summaryMap, err := s.summaries.FetchByExamStudents(ctx, examID, studentIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort summaries")
	}
	if len(summaryMap) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no summaries for exam %s class %s", examID, classID))
	}

	ordered := make([]models.ExamSummary, 0, len(summaryMap))
	for _, summary := range summaryMap {
		ordered = append(ordered, summary)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].OverallPercentage != ordered[j].OverallPercentage {
			return ordered[i].OverallPercentage > ordered[j].OverallPercentage
		}
		return admissionNo[ordered[i].StudentID] < admissionNo[ordered[j].StudentID]
	})

	ranks := make([]models.RankAssignment, len(ordered))
	for i, summary := range ordered {
		ranks[i] = models.RankAssignment{StudentID: summary.StudentID, Rank: i + 1}
	}
	if err := s.summaries.UpdateRanks(ctx, examID, ranks); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist cohort ranks")
	}
	s.metrics.RecordCohortRanked()
	if s.cache != nil {
		s.cache.Invalidate(ctx, fmt.Sprintf("exam:%s:*", examID))
	}
	return nil
}

// Get returns the summary for one (exam, student).
func (s *SummaryService) Get(ctx context.Context, examID, studentID string) (*models.ExamSummary, error) {
	summary, err := s.summaries.Find(ctx, examID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam summary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summary")
	}
	return summary, nil
}

// Ranking returns the enriched cohort ranking view, served from cache when
// possible.
func (s *SummaryService) Ranking(ctx context.Context, examID, classID string) ([]models.CohortRankingRow, error) {
	cacheKey := fmt.Sprintf("exam:%s:class:%s:ranking", examID, classID)
	var cached []models.CohortRankingRow
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}
	rankingRows, err := s.summaries.CohortRanking(ctx, examID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort ranking")
	}
	s.cache.Set(ctx, cacheKey, rankingRows, 0)
	return rankingRows, nil
}
