package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-assess-api/internal/models"
)

func newMarkMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func markColumns() []string {
	return []string{"id", "exam_id", "student_id", "subject_id", "max_marks", "marks_obtained", "percentage", "grade", "passing_status", "remarks", "entered_by", "review_status", "review_remark", "created_at", "updated_at"}
}

func TestMarkRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("INSERT INTO mark_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mark := &models.MarkRecord{
		ExamID:        "exam-1",
		StudentID:     "stu-1",
		SubjectID:     "math",
		MaxMarks:      100,
		MarksObtained: 72,
		Percentage:    72,
		Grade:         "B",
		PassingStatus: models.PassingStatusPass,
		EnteredBy:     "teacher-1",
	}
	require.NoError(t, repo.Upsert(context.Background(), mark))

	assert.NotEmpty(t, mark.ID)
	assert.Equal(t, models.ReviewStatusDraft, mark.ReviewStatus)
	assert.False(t, mark.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryUpsertKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("INSERT INTO mark_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mark := &models.MarkRecord{
		ID:           "mark-1",
		ExamID:       "exam-1",
		StudentID:    "stu-1",
		SubjectID:    "math",
		ReviewStatus: models.ReviewStatusCorrection,
	}
	require.NoError(t, repo.Upsert(context.Background(), mark))

	assert.Equal(t, "mark-1", mark.ID)
	assert.Equal(t, models.ReviewStatusCorrection, mark.ReviewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryFind(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	rows := sqlmock.NewRows(markColumns()).
		AddRow("mark-1", "exam-1", "stu-1", "math", 100.0, 72.0, 72.0, "B", "PASS", nil, "teacher-1", "DRAFT", nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM mark_records WHERE exam_id = \\$1 AND student_id = \\$2 AND subject_id = \\$3").
		WithArgs("exam-1", "stu-1", "math").
		WillReturnRows(rows)

	mark, err := repo.Find(context.Background(), "exam-1", "stu-1", "math")
	require.NoError(t, err)
	assert.Equal(t, "mark-1", mark.ID)
	assert.Equal(t, models.ReviewStatusDraft, mark.ReviewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryFetchForExamStudents(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	rows := sqlmock.NewRows(markColumns()).
		AddRow("mark-1", "exam-1", "stu-1", "math", 100.0, 80.0, 80.0, "A", "PASS", nil, "teacher-1", "SUBMITTED", nil, time.Now(), time.Now()).
		AddRow("mark-2", "exam-1", "stu-2", "math", 100.0, 55.0, 55.0, "D", "PASS", nil, "teacher-1", "SUBMITTED", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("student_id IN ($2,$3)")).
		WithArgs("exam-1", "stu-1", "stu-2").
		WillReturnRows(rows)

	marksByStudent, err := repo.FetchForExamStudents(context.Background(), "exam-1", []string{"stu-1", "stu-2"})
	require.NoError(t, err)
	assert.Len(t, marksByStudent, 2)
	assert.Len(t, marksByStudent["stu-1"], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryFetchForExamsEmptyScope(t *testing.T) {
	db, _, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	marks, err := repo.FetchForExams(context.Background(), nil, []string{"stu-1"}, nil)
	require.NoError(t, err)
	assert.Nil(t, marks)
}

func TestMarkRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("UPDATE mark_records SET review_status").
		WithArgs(models.ReviewStatusSubmitted, nil, sqlmock.AnyArg(), "exam-1", "stu-1", "stu-2", models.ReviewStatusDraft, models.ReviewStatusCorrection).
		WillReturnResult(sqlmock.NewResult(0, 3))

	flipped, err := repo.UpdateStatus(context.Background(), "exam-1", []string{"stu-1", "stu-2"},
		[]models.ReviewStatus{models.ReviewStatusDraft, models.ReviewStatusCorrection},
		models.ReviewStatusSubmitted, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), flipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryUpdateStatusEmptyScope(t *testing.T) {
	db, _, cleanup := newMarkMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	flipped, err := repo.UpdateStatus(context.Background(), "exam-1", nil, []models.ReviewStatus{models.ReviewStatusDraft}, models.ReviewStatusSubmitted, nil)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}
