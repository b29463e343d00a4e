package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-assess-api/internal/models"
)

// ExamRepository reads exam definitions. Exam administration lives in the
// admin module; the engine only consumes the subject mapping.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID returns an exam definition.
func (r *ExamRepository) FindByID(ctx context.Context, examID string) (*models.Exam, error) {
	const query = `SELECT id, name, academic_year, start_date, end_date, created_at, updated_at
        FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, examID); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ExamSubjects returns the subject-to-marking-scheme mapping for an exam,
// optionally scoped to one class. Empty classID returns all classes.
func (r *ExamRepository) ExamSubjects(ctx context.Context, examID, classID string) ([]models.ExamSubject, error) {
	query := `SELECT es.id, es.exam_id, es.class_id, es.subject_id, sub.name AS subject_name, es.max_marks, es.passing_marks
        FROM exam_subjects es
        JOIN subjects sub ON sub.id = es.subject_id
        WHERE es.exam_id = $1`
	args := []interface{}{examID}
	if classID != "" {
		query += " AND es.class_id = $2"
		args = append(args, classID)
	}
	query += " ORDER BY sub.name"
	var subjects []models.ExamSubject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("exam subjects exam=%s: %w", examID, err)
	}
	return subjects, nil
}
