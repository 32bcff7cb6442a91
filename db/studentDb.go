package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"langtutor/models"

	_ "github.com/lib/pq"
)

// ErrNotFound marks a requested record as absent, as opposed to a store
// failure. Callers check it with errors.Is.
var ErrNotFound = errors.New("not found")

type StudentRepository interface {
	CreateStudent(student *models.StudentProfile) error
	GetStudent(studentID string) (*models.StudentProfile, error)
	ReplaceStudent(student *models.StudentProfile) error
	GetRandomStudent() (*models.StudentProfile, error)
	CountStudents() (int, error)
	Close() error
}

type PostgresStudentRepository struct {
	db *sql.DB
}

func NewPostgresStudentRepository(databaseURL string) (*PostgresStudentRepository, error) {
	db, err := openDatabase(databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresStudentRepository{db: db}, nil
}

// openDatabase opens a connection pool and pings it. A failed ping is logged
// but not fatal: the server runs in a degraded mode where queries return
// errors that the service layer absorbs into empty results.
func openDatabase(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("[WARN] Database unreachable, continuing in degraded mode: %v", err)
	}

	return db, nil
}

func (r *PostgresStudentRepository) CreateStudent(student *models.StudentProfile) error {
	query := `
		INSERT INTO langtutor.students
			(student_id, name, native_language, target_language, current_level, target_level, learning_style, goals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(query,
		student.StudentID, student.Name, student.NativeLanguage, student.TargetLanguage,
		student.CurrentLevel, student.TargetLevel, student.LearningStyle, student.Goals)

	if err := row.Scan(&student.CreatedAt, &student.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

func (r *PostgresStudentRepository) GetStudent(studentID string) (*models.StudentProfile, error) {
	query := `
		SELECT student_id, name, native_language, target_language, current_level, target_level, learning_style, goals, created_at, updated_at
		FROM langtutor.students
		WHERE student_id = $1`

	student := &models.StudentProfile{}
	row := r.db.QueryRow(query, studentID)

	err := row.Scan(&student.StudentID, &student.Name, &student.NativeLanguage, &student.TargetLanguage,
		&student.CurrentLevel, &student.TargetLevel, &student.LearningStyle, &student.Goals,
		&student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// ReplaceStudent upserts the whole profile for its key. Unspecified fields do
// not survive: the caller always saves a complete record.
func (r *PostgresStudentRepository) ReplaceStudent(student *models.StudentProfile) error {
	query := `
		INSERT INTO langtutor.students
			(student_id, name, native_language, target_language, current_level, target_level, learning_style, goals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id) DO UPDATE SET
			name = EXCLUDED.name,
			native_language = EXCLUDED.native_language,
			target_language = EXCLUDED.target_language,
			current_level = EXCLUDED.current_level,
			target_level = EXCLUDED.target_level,
			learning_style = EXCLUDED.learning_style,
			goals = EXCLUDED.goals,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(query,
		student.StudentID, student.Name, student.NativeLanguage, student.TargetLanguage,
		student.CurrentLevel, student.TargetLevel, student.LearningStyle, student.Goals)

	if err := row.Scan(&student.CreatedAt, &student.UpdatedAt); err != nil {
		return fmt.Errorf("failed to replace student: %w", err)
	}

	return nil
}

// GetRandomStudent samples one student uniformly at random, used when no
// specific student is designated. ORDER BY random() is the provider-native
// sampling path; it must not degrade into a biased "first N" scan.
func (r *PostgresStudentRepository) GetRandomStudent() (*models.StudentProfile, error) {
	query := `
		SELECT student_id, name, native_language, target_language, current_level, target_level, learning_style, goals, created_at, updated_at
		FROM langtutor.students
		ORDER BY random()
		LIMIT 1`

	student := &models.StudentProfile{}
	row := r.db.QueryRow(query)

	err := row.Scan(&student.StudentID, &student.Name, &student.NativeLanguage, &student.TargetLanguage,
		&student.CurrentLevel, &student.TargetLevel, &student.LearningStyle, &student.Goals,
		&student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no students: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to sample student: %w", err)
	}

	return student, nil
}

func (r *PostgresStudentRepository) CountStudents() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM langtutor.students`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

func (r *PostgresStudentRepository) Close() error {
	return r.db.Close()
}
