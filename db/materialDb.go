package db

import (
	"database/sql"
	"fmt"

	"langtutor/models"

	_ "github.com/lib/pq"
)

type MaterialRepository interface {
	AddMaterial(material *models.Material) error
	GetAllMaterials() ([]*models.Material, error)
	GetMaterialsByFilter(topic, level string) ([]*models.Material, error)
	CountMaterials() (int, error)
	Close() error
}

// PostgresMaterialRepository is the row store behind the materials corpus.
// The lexical searcher ranks these rows directly; the embedding searcher uses
// the mirrored vector index instead.
type PostgresMaterialRepository struct {
	db *sql.DB
}

func NewPostgresMaterialRepository(databaseURL string) (*PostgresMaterialRepository, error) {
	db, err := openDatabase(databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresMaterialRepository{db: db}, nil
}

func (r *PostgresMaterialRepository) AddMaterial(material *models.Material) error {
	query := `
		INSERT INTO langtutor.materials (id, topic, level, language, content, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			topic = EXCLUDED.topic,
			level = EXCLUDED.level,
			language = EXCLUDED.language,
			content = EXCLUDED.content,
			source = EXCLUDED.source
		RETURNING created_at`

	row := r.db.QueryRow(query, material.ID, material.Topic, material.Level,
		material.Language, material.Content, material.Source)

	if err := row.Scan(&material.CreatedAt); err != nil {
		return fmt.Errorf("failed to add material: %w", err)
	}

	return nil
}

func (r *PostgresMaterialRepository) GetAllMaterials() ([]*models.Material, error) {
	return r.queryMaterials(`
		SELECT id, topic, level, language, content, source, created_at
		FROM langtutor.materials
		ORDER BY created_at DESC`)
}

func (r *PostgresMaterialRepository) GetMaterialsByFilter(topic, level string) ([]*models.Material, error) {
	query := `
		SELECT id, topic, level, language, content, source, created_at
		FROM langtutor.materials
		WHERE ($1 = '' OR topic = $1) AND ($2 = '' OR level = $2)
		ORDER BY created_at DESC`

	return r.queryMaterials(query, topic, level)
}

func (r *PostgresMaterialRepository) queryMaterials(query string, args ...any) ([]*models.Material, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		material := &models.Material{}
		err := rows.Scan(&material.ID, &material.Topic, &material.Level, &material.Language,
			&material.Content, &material.Source, &material.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, material)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over materials: %w", err)
	}

	return materials, nil
}

func (r *PostgresMaterialRepository) CountMaterials() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM langtutor.materials`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count materials: %w", err)
	}
	return count, nil
}

func (r *PostgresMaterialRepository) Close() error {
	return r.db.Close()
}
