package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"langtutor/models"

	_ "github.com/lib/pq"
)

type ChatRepository interface {
	AppendInteraction(interaction *models.ChatInteraction) error
	GetRecentInteractions(studentID string, limit int) ([]*models.ChatInteraction, error)
	SaveEvaluation(evaluation *models.ChatEvaluation) error
	SaveAssessmentResult(result *models.AssessmentResult) error
	Close() error
}

// PostgresChatRepository holds the append-only logs: chat interactions,
// chat evaluations, and assessment results. Rows are only ever inserted.
type PostgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(databaseURL string) (*PostgresChatRepository, error) {
	db, err := openDatabase(databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresChatRepository{db: db}, nil
}

func (r *PostgresChatRepository) AppendInteraction(interaction *models.ChatInteraction) error {
	query := `
		INSERT INTO langtutor.chat_interactions (student_id, question, answer)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	row := r.db.QueryRow(query, interaction.StudentID, interaction.Question, interaction.Answer)
	if err := row.Scan(&interaction.ID, &interaction.CreatedAt); err != nil {
		return fmt.Errorf("failed to append chat interaction: %w", err)
	}

	return nil
}

// GetRecentInteractions returns up to limit interactions, newest first.
func (r *PostgresChatRepository) GetRecentInteractions(studentID string, limit int) ([]*models.ChatInteraction, error) {
	query := `
		SELECT id, student_id, question, answer, created_at
		FROM langtutor.chat_interactions
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]*models.ChatInteraction, 0)
	for rows.Next() {
		interaction := &models.ChatInteraction{}
		err := rows.Scan(&interaction.ID, &interaction.StudentID, &interaction.Question,
			&interaction.Answer, &interaction.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat interaction: %w", err)
		}
		interactions = append(interactions, interaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over chat interactions: %w", err)
	}

	return interactions, nil
}

func (r *PostgresChatRepository) SaveEvaluation(evaluation *models.ChatEvaluation) error {
	docJSON, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal chat evaluation: %w", err)
	}

	query := `
		INSERT INTO langtutor.chat_evaluations (student_id, doc)
		VALUES ($1, $2)`

	if _, err := r.db.Exec(query, evaluation.StudentID, docJSON); err != nil {
		return fmt.Errorf("failed to save chat evaluation: %w", err)
	}

	return nil
}

func (r *PostgresChatRepository) SaveAssessmentResult(result *models.AssessmentResult) error {
	docJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment result: %w", err)
	}

	query := `
		INSERT INTO langtutor.assessment_results (student_id, doc)
		VALUES ($1, $2)
		RETURNING id`

	row := r.db.QueryRow(query, result.StudentID, docJSON)
	if err := row.Scan(&result.ID); err != nil {
		return fmt.Errorf("failed to save assessment result: %w", err)
	}

	return nil
}

func (r *PostgresChatRepository) Close() error {
	return r.db.Close()
}
