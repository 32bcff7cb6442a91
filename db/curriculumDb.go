package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"langtutor/models"

	_ "github.com/lib/pq"
)

type CurriculumRepository interface {
	GetCurriculum(studentID, language string) (*models.Curriculum, error)
	SaveCurriculum(curriculum *models.Curriculum) error
	IncrementCompletedWeeks(studentID, language string) (*models.Curriculum, error)
	Close() error
}

// PostgresCurriculumRepository stores each curriculum as a JSONB document
// keyed by (student_id, language). Saves replace the whole document; the last
// upsert to land wins.
type PostgresCurriculumRepository struct {
	db *sql.DB
}

func NewPostgresCurriculumRepository(databaseURL string) (*PostgresCurriculumRepository, error) {
	db, err := openDatabase(databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresCurriculumRepository{db: db}, nil
}

func (r *PostgresCurriculumRepository) GetCurriculum(studentID, language string) (*models.Curriculum, error) {
	query := `
		SELECT doc, created_at, updated_at
		FROM langtutor.curricula
		WHERE student_id = $1 AND language = $2`

	var docJSON []byte
	curriculum := &models.Curriculum{}
	row := r.db.QueryRow(query, studentID, language)

	err := row.Scan(&docJSON, &curriculum.CreatedAt, &curriculum.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("curriculum for %s (%s): %w", studentID, language, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get curriculum: %w", err)
	}

	if err := json.Unmarshal(docJSON, curriculum); err != nil {
		return nil, fmt.Errorf("failed to unmarshal curriculum: %w", err)
	}
	curriculum.StudentID = studentID
	curriculum.Language = language

	return curriculum, nil
}

func (r *PostgresCurriculumRepository) SaveCurriculum(curriculum *models.Curriculum) error {
	docJSON, err := json.Marshal(curriculum)
	if err != nil {
		return fmt.Errorf("failed to marshal curriculum: %w", err)
	}

	query := `
		INSERT INTO langtutor.curricula (student_id, language, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, language) DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = NOW()`

	if _, err := r.db.Exec(query, curriculum.StudentID, curriculum.Language, docJSON); err != nil {
		return fmt.Errorf("failed to save curriculum: %w", err)
	}

	return nil
}

// IncrementCompletedWeeks bumps the completed-week counter by one, clamped at
// total_weeks. The counter never decreases.
func (r *PostgresCurriculumRepository) IncrementCompletedWeeks(studentID, language string) (*models.Curriculum, error) {
	curriculum, err := r.GetCurriculum(studentID, language)
	if err != nil {
		return nil, err
	}

	if curriculum.CompletedWeeks < curriculum.TotalWeeks {
		curriculum.CompletedWeeks++
	}

	if err := r.SaveCurriculum(curriculum); err != nil {
		return nil, err
	}

	return curriculum, nil
}

func (r *PostgresCurriculumRepository) Close() error {
	return r.db.Close()
}
