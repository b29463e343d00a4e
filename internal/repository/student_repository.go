package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-assess-api/internal/models"
)

// StudentRepository is the read-only roster provider used by ranking and
// term computation.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListActiveByClass returns the active roster for a class ordered by
// admission number, which doubles as the rank tie-break order.
func (r *StudentRepository) ListActiveByClass(ctx context.Context, classID string) ([]models.Student, error) {
	const query = `SELECT id, roll_number, admission_no, full_name, class_id
        FROM students WHERE class_id = $1 AND active = true
        ORDER BY admission_no`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list active students class=%s: %w", classID, err)
	}
	return students, nil
}

// FindByID returns one student row.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, roll_number, admission_no, full_name, class_id
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}
