package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-assess-api/internal/models"
)

// MarkRepository handles mark record persistence. Uniqueness on
// (exam_id, student_id, subject_id) is enforced by the table; writes rely
// on upsert-on-conflict, never read-then-write.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository creates a new mark repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert inserts or updates a mark record. The review status is set on
// first insert only; conflicts leave the stored status untouched so that
// workflow transitions stay separate writes.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.MarkRecord) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now
	if mark.ReviewStatus == "" {
		mark.ReviewStatus = models.ReviewStatusDraft
	}
	const query = `INSERT INTO mark_records (id, exam_id, student_id, subject_id, max_marks, marks_obtained, percentage, grade, passing_status, remarks, entered_by, review_status, created_at, updated_at)
        VALUES (:id, :exam_id, :student_id, :subject_id, :max_marks, :marks_obtained, :percentage, :grade, :passing_status, :remarks, :entered_by, :review_status, :created_at, :updated_at)
        ON CONFLICT (exam_id, student_id, subject_id)
        DO UPDATE SET max_marks = EXCLUDED.max_marks, marks_obtained = EXCLUDED.marks_obtained, percentage = EXCLUDED.percentage, grade = EXCLUDED.grade, passing_status = EXCLUDED.passing_status, remarks = EXCLUDED.remarks, entered_by = EXCLUDED.entered_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("upsert mark exam=%s student=%s subject=%s: %w", mark.ExamID, mark.StudentID, mark.SubjectID, err)
	}
	return nil
}

// Find returns the stored record for one (exam, student, subject) key.
func (r *MarkRepository) Find(ctx context.Context, examID, studentID, subjectID string) (*models.MarkRecord, error) {
	const query = `SELECT id, exam_id, student_id, subject_id, max_marks, marks_obtained, percentage, grade, passing_status, remarks, entered_by, review_status, review_remark, created_at, updated_at
        FROM mark_records WHERE exam_id = $1 AND student_id = $2 AND subject_id = $3`
	var mark models.MarkRecord
	if err := r.db.GetContext(ctx, &mark, query, examID, studentID, subjectID); err != nil {
		return nil, err
	}
	return &mark, nil
}

// FetchForStudentExam returns all of a student's marks for one exam.
func (r *MarkRepository) FetchForStudentExam(ctx context.Context, examID, studentID string) ([]models.MarkRecord, error) {
	const query = `SELECT id, exam_id, student_id, subject_id, max_marks, marks_obtained, percentage, grade, passing_status, remarks, entered_by, review_status, review_remark, created_at, updated_at
        FROM mark_records WHERE exam_id = $1 AND student_id = $2 ORDER BY subject_id`
	var marks []models.MarkRecord
	if err := r.db.SelectContext(ctx, &marks, query, examID, studentID); err != nil {
		return nil, fmt.Errorf("fetch marks exam=%s student=%s: %w", examID, studentID, err)
	}
	return marks, nil
}

// FetchForExamStudents returns marks keyed by student ID for a cohort.
func (r *MarkRepository) FetchForExamStudents(ctx context.Context, examID string, studentIDs []string) (map[string][]models.MarkRecord, error) {
	result := make(map[string][]models.MarkRecord, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, len(studentIDs)+1)
	args[0] = examID
	for i, id := range studentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = id
	}
	query := fmt.Sprintf(`SELECT id, exam_id, student_id, subject_id, max_marks, marks_obtained, percentage, grade, passing_status, remarks, entered_by, review_status, review_remark, created_at, updated_at
        FROM mark_records WHERE exam_id = $1 AND student_id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch cohort marks exam=%s: %w", examID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var mark models.MarkRecord
		if err := rows.StructScan(&mark); err != nil {
			return nil, fmt.Errorf("scan mark: %w", err)
		}
		result[mark.StudentID] = append(result[mark.StudentID], mark)
	}
	return result, nil
}

// FetchForExams returns marks across several exams restricted to the given
// review statuses, used by the term weighting calculator.
func (r *MarkRepository) FetchForExams(ctx context.Context, examIDs []string, studentIDs []string, statuses []models.ReviewStatus) ([]models.MarkRecord, error) {
	if len(examIDs) == 0 || len(studentIDs) == 0 {
		return nil, nil
	}
	var args []interface{}
	examPh := make([]string, len(examIDs))
	for i, id := range examIDs {
		args = append(args, id)
		examPh[i] = fmt.Sprintf("$%d", len(args))
	}
	studentPh := make([]string, len(studentIDs))
	for i, id := range studentIDs {
		args = append(args, id)
		studentPh[i] = fmt.Sprintf("$%d", len(args))
	}
	statusPh := make([]string, len(statuses))
	for i, s := range statuses {
		args = append(args, s)
		statusPh[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`SELECT id, exam_id, student_id, subject_id, max_marks, marks_obtained, percentage, grade, passing_status, remarks, entered_by, review_status, review_remark, created_at, updated_at
        FROM mark_records WHERE exam_id IN (%s) AND student_id IN (%s) AND review_status IN (%s)`,
		strings.Join(examPh, ","), strings.Join(studentPh, ","), strings.Join(statusPh, ","))
	var marks []models.MarkRecord
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, fmt.Errorf("fetch term marks: %w", err)
	}
	return marks, nil
}

// UpdateStatus transitions every record for the given students that is
// currently in one of fromStatuses into toStatus. It returns the number of
// rows flipped.
func (r *MarkRepository) UpdateStatus(ctx context.Context, examID string, studentIDs []string, fromStatuses []models.ReviewStatus, toStatus models.ReviewStatus, reviewRemark *string) (int64, error) {
	if len(studentIDs) == 0 || len(fromStatuses) == 0 {
		return 0, nil
	}
	args := []interface{}{toStatus, reviewRemark, time.Now().UTC(), examID}
	studentPh := make([]string, len(studentIDs))
	for i, id := range studentIDs {
		args = append(args, id)
		studentPh[i] = fmt.Sprintf("$%d", len(args))
	}
	fromPh := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		args = append(args, s)
		fromPh[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE mark_records SET review_status = $1, review_remark = COALESCE($2, review_remark), updated_at = $3
        WHERE exam_id = $4 AND student_id IN (%s) AND review_status IN (%s)`,
		strings.Join(studentPh, ","), strings.Join(fromPh, ","))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update mark status exam=%s: %w", examID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}
