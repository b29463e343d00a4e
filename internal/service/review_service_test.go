package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-assess-api/internal/models"
	appErrors "github.com/noah-isme/exam-assess-api/pkg/errors"
)

type fakeReviewMarkRepo struct {
	marks map[string][]models.MarkRecord

	lastFrom   []models.ReviewStatus
	lastTo     models.ReviewStatus
	lastRemark *string
}

func (f *fakeReviewMarkRepo) FetchForExamStudents(ctx context.Context, examID string, studentIDs []string) (map[string][]models.MarkRecord, error) {
	result := make(map[string][]models.MarkRecord)
	for _, id := range studentIDs {
		if rows, ok := f.marks[id]; ok {
			result[id] = rows
		}
	}
	return result, nil
}

func (f *fakeReviewMarkRepo) UpdateStatus(ctx context.Context, examID string, studentIDs []string, fromStatuses []models.ReviewStatus, toStatus models.ReviewStatus, reviewRemark *string) (int64, error) {
	f.lastFrom = fromStatuses
	f.lastTo = toStatus
	f.lastRemark = reviewRemark

	eligible := make(map[models.ReviewStatus]struct{}, len(fromStatuses))
	for _, status := range fromStatuses {
		eligible[status] = struct{}{}
	}
	var flipped int64
	for _, id := range studentIDs {
		rows := f.marks[id]
		for i := range rows {
			if _, ok := eligible[rows[i].ReviewStatus]; !ok {
				continue
			}
			rows[i].ReviewStatus = toStatus
			if reviewRemark != nil {
				rows[i].ReviewRemark = reviewRemark
			}
			flipped++
		}
		f.marks[id] = rows
	}
	return flipped, nil
}

type fakeRanker struct {
	ranked bool
	err    error
}

func (f *fakeRanker) RankCohort(ctx context.Context, examID, classID string) error {
	f.ranked = true
	return f.err
}

func reviewFixture(marks map[string][]models.MarkRecord) (*ReviewService, *fakeReviewMarkRepo, *fakeRanker) {
	repo := &fakeReviewMarkRepo{marks: marks}
	exams := &fakeExamReader{subjects: []models.ExamSubject{
		{ExamID: "exam-1", ClassID: "class-1", SubjectID: "math", MaxMarks: 100},
		{ExamID: "exam-1", ClassID: "class-1", SubjectID: "phys", MaxMarks: 100},
	}}
	roster := &fakeRoster{students: []models.Student{
		{ID: "stu-1", AdmissionNo: "A001", ClassID: "class-1"},
		{ID: "stu-2", AdmissionNo: "A002", ClassID: "class-1"},
	}}
	ranker := &fakeRanker{}
	svc := NewReviewService(repo, exams, roster, ranker, nil, nil)
	return svc, repo, ranker
}

func draftMark(studentID, subjectID string) models.MarkRecord {
	return models.MarkRecord{
		ExamID: "exam-1", StudentID: studentID, SubjectID: subjectID,
		ReviewStatus: models.ReviewStatusDraft,
	}
}

func submittedMark(studentID, subjectID string) models.MarkRecord {
	m := draftMark(studentID, subjectID)
	m.ReviewStatus = models.ReviewStatusSubmitted
	return m
}

func TestSubmitRejectsIncompleteCoverage(t *testing.T) {
	svc, _, _ := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {draftMark("stu-1", "math"), draftMark("stu-1", "phys")},
		"stu-2": {draftMark("stu-2", "math")},
	})

	_, err := svc.Submit(context.Background(), SubmitMarksRequest{ExamID: "exam-1", ClassID: "class-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPrecondition.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "student=stu-2 subject=phys")
}

func TestSubmitFlipsFullCohort(t *testing.T) {
	svc, repo, _ := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {draftMark("stu-1", "math"), draftMark("stu-1", "phys")},
		"stu-2": {draftMark("stu-2", "math"), draftMark("stu-2", "phys")},
	})

	result, err := svc.Submit(context.Background(), SubmitMarksRequest{ExamID: "exam-1", ClassID: "class-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Submitted)
	assert.Equal(t, 2, result.Students)
	assert.Equal(t, models.ReviewStatusSubmitted, repo.lastTo)
	assert.ElementsMatch(t, []models.ReviewStatus{models.ReviewStatusDraft, models.ReviewStatusCorrection}, repo.lastFrom)
}

func TestSubmitScopedToStudents(t *testing.T) {
	svc, repo, _ := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {draftMark("stu-1", "math"), draftMark("stu-1", "phys")},
		"stu-2": {draftMark("stu-2", "math")},
	})

	result, err := svc.Submit(context.Background(), SubmitMarksRequest{
		ExamID: "exam-1", ClassID: "class-1", StudentIDs: []string{"stu-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Submitted)
	assert.Equal(t, models.ReviewStatusSubmitted, repo.marks["stu-1"][0].ReviewStatus)
	assert.Equal(t, models.ReviewStatusDraft, repo.marks["stu-2"][0].ReviewStatus)
}

func TestSubmitUnknownStudentInScope(t *testing.T) {
	svc, _, _ := reviewFixture(map[string][]models.MarkRecord{})

	_, err := svc.Submit(context.Background(), SubmitMarksRequest{
		ExamID: "exam-1", ClassID: "class-1", StudentIDs: []string{"stu-ghost"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApproveRequiresFullSubmission(t *testing.T) {
	svc, _, ranker := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {submittedMark("stu-1", "math"), submittedMark("stu-1", "phys")},
		"stu-2": {submittedMark("stu-2", "math"), draftMark("stu-2", "phys")},
	})

	_, err := svc.Approve(context.Background(), ApproveMarksRequest{ExamID: "exam-1", ClassID: "class-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPrecondition.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "student=stu-2 subject=phys status=DRAFT")
	assert.False(t, ranker.ranked)
}

func TestApproveFlipsAndRanks(t *testing.T) {
	svc, repo, ranker := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {submittedMark("stu-1", "math"), submittedMark("stu-1", "phys")},
		"stu-2": {submittedMark("stu-2", "math"), submittedMark("stu-2", "phys")},
	})

	result, err := svc.Approve(context.Background(), ApproveMarksRequest{ExamID: "exam-1", ClassID: "class-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Approved)
	assert.Empty(t, result.RankingWarning)
	assert.True(t, ranker.ranked)
	assert.Equal(t, models.ReviewStatusApproved, repo.marks["stu-1"][0].ReviewStatus)
}

func TestApproveRankingFailureDegradesToWarning(t *testing.T) {
	svc, _, ranker := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {submittedMark("stu-1", "math"), submittedMark("stu-1", "phys")},
		"stu-2": {submittedMark("stu-2", "math"), submittedMark("stu-2", "phys")},
	})
	ranker.err = assert.AnError

	result, err := svc.Approve(context.Background(), ApproveMarksRequest{ExamID: "exam-1", ClassID: "class-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Approved)
	assert.NotEmpty(t, result.RankingWarning)
}

func TestRequestCorrectionFlipsSubmitted(t *testing.T) {
	remark := "recheck phys totals"
	svc, repo, _ := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {submittedMark("stu-1", "math"), submittedMark("stu-1", "phys")},
	})

	flipped, err := svc.RequestCorrection(context.Background(), RequestCorrectionRequest{
		ExamID: "exam-1", ClassID: "class-1", Remark: &remark,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), flipped)
	assert.Equal(t, models.ReviewStatusCorrection, repo.marks["stu-1"][0].ReviewStatus)
	require.NotNil(t, repo.marks["stu-1"][0].ReviewRemark)
	assert.Equal(t, remark, *repo.marks["stu-1"][0].ReviewRemark)
}

func TestRequestCorrectionNothingSubmitted(t *testing.T) {
	svc, _, _ := reviewFixture(map[string][]models.MarkRecord{
		"stu-1": {draftMark("stu-1", "math")},
	})

	_, err := svc.RequestCorrection(context.Background(), RequestCorrectionRequest{ExamID: "exam-1", ClassID: "class-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPrecondition.Code, appErrors.FromError(err).Code)
}
