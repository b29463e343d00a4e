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

// SummaryRepository manages derived exam summary persistence, keyed by
// (exam_id, student_id).
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository constructs repository.
func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert writes the recomputed summary for one (exam, student).
func (r *SummaryRepository) Upsert(ctx context.Context, summary *models.ExamSummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.ComputedAt.IsZero() {
		summary.ComputedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exam_summaries (id, exam_id, student_id, total_marks, total_max_marks, overall_percentage, overall_grade, result_status, subjects_passed, subjects_failed, rank_in_class, computed_at)
        VALUES (:id, :exam_id, :student_id, :total_marks, :total_max_marks, :overall_percentage, :overall_grade, :result_status, :subjects_passed, :subjects_failed, :rank_in_class, :computed_at)
        ON CONFLICT (exam_id, student_id)
        DO UPDATE SET total_marks = EXCLUDED.total_marks, total_max_marks = EXCLUDED.total_max_marks, overall_percentage = EXCLUDED.overall_percentage, overall_grade = EXCLUDED.overall_grade, result_status = EXCLUDED.result_status, subjects_passed = EXCLUDED.subjects_passed, subjects_failed = EXCLUDED.subjects_failed, computed_at = EXCLUDED.computed_at`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("upsert summary exam=%s student=%s: %w", summary.ExamID, summary.StudentID, err)
	}
	return nil
}

// Find returns the summary for one (exam, student).
func (r *SummaryRepository) Find(ctx context.Context, examID, studentID string) (*models.ExamSummary, error) {
	const query = `SELECT id, exam_id, student_id, total_marks, total_max_marks, overall_percentage, overall_grade, result_status, subjects_passed, subjects_failed, rank_in_class, computed_at
        FROM exam_summaries WHERE exam_id = $1 AND student_id = $2`
	var summary models.ExamSummary
	if err := r.db.GetContext(ctx, &summary, query, examID, studentID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FetchByExamStudents returns summaries for a cohort keyed by student ID.
func (r *SummaryRepository) FetchByExamStudents(ctx context.Context, examID string, studentIDs []string) (map[string]models.ExamSummary, error) {
	result := make(map[string]models.ExamSummary, len(studentIDs))
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
	query := fmt.Sprintf(`SELECT id, exam_id, student_id, total_marks, total_max_marks, overall_percentage, overall_grade, result_status, subjects_passed, subjects_failed, rank_in_class, computed_at
        FROM exam_summaries WHERE exam_id = $1 AND student_id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch summaries exam=%s: %w", examID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var summary models.ExamSummary
		if err := rows.StructScan(&summary); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		result[summary.StudentID] = summary
	}
	return result, nil
}

// UpdateRanks persists cohort rank assignments in one transaction.
func (r *SummaryRepository) UpdateRanks(ctx context.Context, examID string, ranks []models.RankAssignment) error {
	if len(ranks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `UPDATE exam_summaries SET rank_in_class = $1 WHERE exam_id = $2 AND student_id = $3`
	for _, assignment := range ranks {
		if _, err := tx.ExecContext(ctx, query, assignment.Rank, examID, assignment.StudentID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update rank exam=%s student=%s: %w", examID, assignment.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ranks: %w", err)
	}
	return nil
}

// CohortRanking returns the enriched ranking view for one (exam, class).
func (r *SummaryRepository) CohortRanking(ctx context.Context, examID, classID string) ([]models.CohortRankingRow, error) {
	const query = `SELECT es.student_id, s.full_name AS student_name, s.admission_no, es.overall_percentage, es.overall_grade, es.result_status, es.rank_in_class
        FROM exam_summaries es
        JOIN students s ON s.id = es.student_id
        WHERE es.exam_id = $1 AND s.class_id = $2 AND s.active = true
        ORDER BY es.rank_in_class NULLS LAST, es.overall_percentage DESC, s.admission_no`
	var rankingRows []models.CohortRankingRow
	if err := r.db.SelectContext(ctx, &rankingRows, query, examID, classID); err != nil {
		return nil, fmt.Errorf("cohort ranking exam=%s class=%s: %w", examID, classID, err)
	}
	return rankingRows, nil
}
