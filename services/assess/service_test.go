package assess

import (
	"context"
	"fmt"
	"testing"
	"time"

	"langtutor/db"
	"langtutor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStudentRepo struct {
	profile *models.StudentProfile
}

func (r *fakeStudentRepo) CreateStudent(*models.StudentProfile) error { return nil }

func (r *fakeStudentRepo) GetStudent(studentID string) (*models.StudentProfile, error) {
	if r.profile == nil || r.profile.StudentID != studentID {
		return nil, fmt.Errorf("student %s: %w", studentID, db.ErrNotFound)
	}
	return r.profile, nil
}

func (r *fakeStudentRepo) ReplaceStudent(*models.StudentProfile) error { return nil }
func (r *fakeStudentRepo) GetRandomStudent() (*models.StudentProfile, error) {
	return r.profile, nil
}
func (r *fakeStudentRepo) CountStudents() (int, error) { return 1, nil }
func (r *fakeStudentRepo) Close() error                { return nil }

type fakeCurriculumRepo struct {
	curriculum *models.Curriculum
	increments int
}

func (r *fakeCurriculumRepo) GetCurriculum(studentID, language string) (*models.Curriculum, error) {
	if r.curriculum == nil {
		return nil, db.ErrNotFound
	}
	return r.curriculum, nil
}

func (r *fakeCurriculumRepo) SaveCurriculum(curriculum *models.Curriculum) error {
	r.curriculum = curriculum
	return nil
}

func (r *fakeCurriculumRepo) IncrementCompletedWeeks(studentID, language string) (*models.Curriculum, error) {
	if r.curriculum == nil {
		return nil, db.ErrNotFound
	}
	r.increments++
	if r.curriculum.CompletedWeeks < r.curriculum.TotalWeeks {
		r.curriculum.CompletedWeeks++
	}
	return r.curriculum, nil
}

func (r *fakeCurriculumRepo) Close() error { return nil }

type fakeChatRepo struct {
	results []*models.AssessmentResult
}

func (r *fakeChatRepo) AppendInteraction(*models.ChatInteraction) error { return nil }
func (r *fakeChatRepo) GetRecentInteractions(string, int) ([]*models.ChatInteraction, error) {
	return nil, nil
}
func (r *fakeChatRepo) SaveEvaluation(*models.ChatEvaluation) error { return nil }
func (r *fakeChatRepo) SaveAssessmentResult(result *models.AssessmentResult) error {
	r.results = append(r.results, result)
	return nil
}
func (r *fakeChatRepo) Close() error { return nil }

func testQuiz() models.Quiz {
	return models.Quiz{
		QuizID: "quiz_past_tense",
		Topic:  "Past Tense",
		Questions: []models.QuizQuestion{
			{QuestionID: 1, Type: "multiple_choice", Text: "Pick the past form of go", Options: []string{"A) went", "B) goed", "C) going"}, CorrectAnswer: "A"},
			{QuestionID: 2, Type: "fill_in_the_blank", Text: "Yesterday I ___ a book", CorrectAnswer: "read"},
			{QuestionID: 3, Type: "short_answer", Text: "Past form of eat?", CorrectAnswer: "ate"},
		},
	}
}

func newTestService(students *fakeStudentRepo, curricula *fakeCurriculumRepo, chats *fakeChatRepo) *Service {
	if students == nil {
		students = &fakeStudentRepo{profile: &models.StudentProfile{
			StudentID:      "student-1",
			TargetLanguage: "English",
			CurrentLevel:   2,
			TargetLevel:    4,
		}}
	}
	return NewService(nil, students, curricula, chats, time.Second)
}

func TestEvaluateQuizScoring(t *testing.T) {
	curricula := &fakeCurriculumRepo{curriculum: &models.Curriculum{TotalWeeks: 8}}
	chats := &fakeChatRepo{}
	svc := newTestService(nil, curricula, chats)

	result, err := svc.EvaluateQuiz(context.Background(), &models.QuizSubmission{
		StudentID: "student-1",
		Quiz:      testQuiz(),
		Answers:   map[int]string{1: "A", 2: "wrote", 3: "eated"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.InDelta(t, 33.33, result.Score, 0.01)
	require.Len(t, result.Details, 3)
	assert.True(t, result.Details[0].IsCorrect)
	assert.False(t, result.Details[1].IsCorrect)
	assert.NotEmpty(t, result.Feedback)

	// Saved append-only, and a failing score must not advance the week.
	require.Len(t, chats.results, 1)
	assert.Equal(t, 0, curricula.increments)
}

func TestEvaluateQuizPassingScoreAdvancesWeek(t *testing.T) {
	curricula := &fakeCurriculumRepo{curriculum: &models.Curriculum{TotalWeeks: 8, CompletedWeeks: 2}}
	svc := newTestService(nil, curricula, &fakeChatRepo{})

	result, err := svc.EvaluateQuiz(context.Background(), &models.QuizSubmission{
		StudentID: "student-1",
		Quiz:      testQuiz(),
		Answers:   map[int]string{1: "a) went", 2: "Read", 3: " ate "},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, 1, curricula.increments)
	assert.Equal(t, 3, curricula.curriculum.CompletedWeeks)
}

func TestEvaluateQuizUnknownStudent(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestService(students, &fakeCurriculumRepo{}, &fakeChatRepo{})

	_, err := svc.EvaluateQuiz(context.Background(), &models.QuizSubmission{
		StudentID: "missing",
		Quiz:      testQuiz(),
	})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestEvaluateQuizEmptyQuiz(t *testing.T) {
	svc := newTestService(nil, &fakeCurriculumRepo{}, &fakeChatRepo{})

	_, err := svc.EvaluateQuiz(context.Background(), &models.QuizSubmission{
		StudentID: "student-1",
		Quiz:      models.Quiz{QuizID: "quiz_empty"},
	})
	assert.Error(t, err)
}

func TestAnswerMatches(t *testing.T) {
	multipleChoice := models.QuizQuestion{Type: "multiple_choice", CorrectAnswer: "A) went"}
	freeText := models.QuizQuestion{Type: "short_answer", CorrectAnswer: "ate"}

	tests := []struct {
		name     string
		question models.QuizQuestion
		answer   string
		want     bool
	}{
		{"exact match", freeText, "ate", true},
		{"case and whitespace ignored", freeText, "  ATE ", true},
		{"wrong answer", freeText, "eated", false},
		{"empty answer", freeText, "", false},
		{"bare letter for full option", multipleChoice, "A", true},
		{"letter with paren", multipleChoice, "a)", true},
		{"full option text", multipleChoice, "A) went", true},
		{"wrong letter", multipleChoice, "B", false},
		{"letter matching only free text fails", freeText, "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, answerMatches(tt.question, tt.answer))
		})
	}
}

func TestAdvanceWeekManually(t *testing.T) {
	curricula := &fakeCurriculumRepo{curriculum: &models.Curriculum{TotalWeeks: 4, CompletedWeeks: 3}}
	svc := newTestService(nil, curricula, &fakeChatRepo{})

	curriculum, err := svc.AdvanceWeek("student-1")
	require.NoError(t, err)
	assert.Equal(t, 4, curriculum.CompletedWeeks)

	// Clamped at the plan length.
	curriculum, err = svc.AdvanceWeek("student-1")
	require.NoError(t, err)
	assert.Equal(t, 4, curriculum.CompletedWeeks)
}
