package services

import (
	"fmt"
	"log"
	"strings"

	"langtutor/db"
	"langtutor/models"

	"github.com/google/uuid"
)

type StudentService struct {
	repo db.StudentRepository
}

func NewStudentService(repo db.StudentRepository) *StudentService {
	return &StudentService{repo: repo}
}

func (s *StudentService) CreateStudent(req *models.CreateStudentRequest) (*models.StudentProfile, error) {
	log.Printf("[INFO] Starting student creation")

	if err := s.validateCreateRequest(req); err != nil {
		log.Printf("[ERROR] Student creation validation failed: %v", err)
		return nil, err
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		studentID = uuid.NewString()
	}

	student := &models.StudentProfile{
		StudentID:      studentID,
		Name:           strings.TrimSpace(req.Name),
		NativeLanguage: strings.TrimSpace(req.NativeLanguage),
		TargetLanguage: strings.TrimSpace(req.TargetLanguage),
		CurrentLevel:   req.CurrentLevel,
		TargetLevel:    req.TargetLevel,
		LearningStyle:  strings.TrimSpace(req.LearningStyle),
		Goals:          strings.TrimSpace(req.Goals),
	}

	if err := s.repo.CreateStudent(student); err != nil {
		log.Printf("[ERROR] Failed to create student in repository: %v", err)
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	log.Printf("[INFO] Successfully created student %s (%s -> %s)", student.StudentID, student.NativeLanguage, student.TargetLanguage)
	return student, nil
}

func (s *StudentService) GetStudent(studentID string) (*models.StudentProfile, error) {
	log.Printf("[INFO] Starting get student %s", studentID)

	if strings.TrimSpace(studentID) == "" {
		return nil, fmt.Errorf("student ID is required")
	}

	student, err := s.repo.GetStudent(studentID)
	if err != nil {
		log.Printf("[ERROR] Failed to get student %s: %v", studentID, err)
		return nil, err
	}

	return student, nil
}

// GetRandomStudent picks any stored profile, for demos and smoke checks.
func (s *StudentService) GetRandomStudent() (*models.StudentProfile, error) {
	count, err := s.repo.CountStudents()
	if err != nil {
		log.Printf("[ERROR] Failed to count students: %v", err)
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no students registered: %w", db.ErrNotFound)
	}

	return s.repo.GetRandomStudent()
}

// SwitchLanguage re-targets a student at a new language. The whole profile
// record is replaced; levels are reset along with the language because
// proficiency does not carry over. Any existing curriculum for the new
// language is picked up again on the next planning call.
func (s *StudentService) SwitchLanguage(studentID string, req *models.SwitchLanguageRequest) (*models.StudentProfile, error) {
	log.Printf("[INFO] Starting language switch for student %s", studentID)

	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, fmt.Errorf("target_language is required")
	}
	if err := validateLevels(req.CurrentLevel, req.TargetLevel); err != nil {
		return nil, err
	}

	student, err := s.repo.GetStudent(studentID)
	if err != nil {
		log.Printf("[ERROR] Failed to load student %s for language switch: %v", studentID, err)
		return nil, err
	}

	student.TargetLanguage = strings.TrimSpace(req.TargetLanguage)
	student.CurrentLevel = req.CurrentLevel
	student.TargetLevel = req.TargetLevel

	if err := s.repo.ReplaceStudent(student); err != nil {
		log.Printf("[ERROR] Failed to replace student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to switch language: %w", err)
	}

	log.Printf("[INFO] Student %s now learning %s (%s -> %s)", studentID, student.TargetLanguage,
		models.CEFRForLevel(student.CurrentLevel), models.CEFRForLevel(student.TargetLevel))
	return student, nil
}

func (s *StudentService) validateCreateRequest(req *models.CreateStudentRequest) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(req.NativeLanguage) == "" {
		return fmt.Errorf("native_language is required")
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return fmt.Errorf("target_language is required")
	}
	return validateLevels(req.CurrentLevel, req.TargetLevel)
}

func validateLevels(current, target int) error {
	if current < models.MinLevel || current > models.MaxLevel {
		return fmt.Errorf("current_level must be between %d and %d", models.MinLevel, models.MaxLevel)
	}
	if target < models.MinLevel || target > models.MaxLevel {
		return fmt.Errorf("target_level must be between %d and %d", models.MinLevel, models.MaxLevel)
	}
	if target < current {
		return fmt.Errorf("target_level cannot be below current_level")
	}
	return nil
}
