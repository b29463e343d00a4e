package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-assess-api/internal/models"
)

func summaryColumns() []string {
	return []string{"id", "exam_id", "student_id", "total_marks", "total_max_marks", "overall_percentage", "overall_grade", "result_status", "subjects_passed", "subjects_failed", "rank_in_class", "computed_at"}
}

func TestSummaryRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	mock.ExpectExec("INSERT INTO exam_summaries").
		WillReturnResult(sqlmock.NewResult(0, 1))

	summary := &models.ExamSummary{
		ExamID:            "exam-1",
		StudentID:         "stu-1",
		TotalMarks:        240,
		TotalMaxMarks:     300,
		OverallPercentage: 80,
		OverallGrade:      "A",
		ResultStatus:      models.ResultStatusPass,
		SubjectsPassed:    3,
	}
	require.NoError(t, repo.Upsert(context.Background(), summary))

	assert.NotEmpty(t, summary.ID)
	assert.False(t, summary.ComputedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepositoryFind(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	rank := 2
	rows := sqlmock.NewRows(summaryColumns()).
		AddRow("sum-1", "exam-1", "stu-1", 240.0, 300.0, 80.0, "A", "PASS", 3, 0, rank, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM exam_summaries WHERE exam_id = \\$1 AND student_id = \\$2").
		WithArgs("exam-1", "stu-1").
		WillReturnRows(rows)

	summary, err := repo.Find(context.Background(), "exam-1", "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 80.0, summary.OverallPercentage)
	require.NotNil(t, summary.RankInClass)
	assert.Equal(t, 2, *summary.RankInClass)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepositoryUpdateRanks(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE exam_summaries SET rank_in_class = $1 WHERE exam_id = $2 AND student_id = $3")).
		WithArgs(1, "exam-1", "stu-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE exam_summaries SET rank_in_class = $1 WHERE exam_id = $2 AND student_id = $3")).
		WithArgs(2, "exam-1", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateRanks(context.Background(), "exam-1", []models.RankAssignment{
		{StudentID: "stu-2", Rank: 1},
		{StudentID: "stu-1", Rank: 2},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepositoryUpdateRanksRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE exam_summaries SET rank_in_class").
		WithArgs(1, "exam-1", "stu-1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.UpdateRanks(context.Background(), "exam-1", []models.RankAssignment{{StudentID: "stu-1", Rank: 1}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepositoryCohortRanking(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewSummaryRepository(db)

	rank1, rank2 := 1, 2
	rows := sqlmock.NewRows([]string{"student_id", "student_name", "admission_no", "overall_percentage", "overall_grade", "result_status", "rank_in_class"}).
		AddRow("stu-2", "Bob", "A002", 92.0, "A+", "PASS", rank1).
		AddRow("stu-1", "Alice", "A001", 88.0, "A", "PASS", rank2)
	mock.ExpectQuery("FROM exam_summaries es").
		WithArgs("exam-1", "class-1").
		WillReturnRows(rows)

	ranking, err := repo.CohortRanking(context.Background(), "exam-1", "class-1")
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "stu-2", ranking[0].StudentID)
	require.NotNil(t, ranking[0].RankInClass)
	assert.Equal(t, 1, *ranking[0].RankInClass)
	assert.NoError(t, mock.ExpectationsWereMet())
}
