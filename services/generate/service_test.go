package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"langtutor/db"
	"langtutor/models"
	"langtutor/services/llm"
	"langtutor/services/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStudentRepo struct {
	students map[string]*models.StudentProfile
}

func newFakeStudentRepo(students ...*models.StudentProfile) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]*models.StudentProfile)}
	for _, s := range students {
		repo.students[s.StudentID] = s
	}
	return repo
}

func (r *fakeStudentRepo) CreateStudent(student *models.StudentProfile) error {
	r.students[student.StudentID] = student
	return nil
}

func (r *fakeStudentRepo) GetStudent(studentID string) (*models.StudentProfile, error) {
	student, ok := r.students[studentID]
	if !ok {
		return nil, fmt.Errorf("student %s: %w", studentID, db.ErrNotFound)
	}
	return student, nil
}

func (r *fakeStudentRepo) ReplaceStudent(student *models.StudentProfile) error {
	if _, ok := r.students[student.StudentID]; !ok {
		return fmt.Errorf("student %s: %w", student.StudentID, db.ErrNotFound)
	}
	r.students[student.StudentID] = student
	return nil
}

func (r *fakeStudentRepo) GetRandomStudent() (*models.StudentProfile, error) {
	for _, s := range r.students {
		return s, nil
	}
	return nil, db.ErrNotFound
}

func (r *fakeStudentRepo) CountStudents() (int, error) { return len(r.students), nil }
func (r *fakeStudentRepo) Close() error                { return nil }

type fakeCurriculumRepo struct {
	curricula map[string]*models.Curriculum
	saves     int
}

func newFakeCurriculumRepo() *fakeCurriculumRepo {
	return &fakeCurriculumRepo{curricula: make(map[string]*models.Curriculum)}
}

func curriculumKey(studentID, language string) string { return studentID + "|" + language }

func (r *fakeCurriculumRepo) GetCurriculum(studentID, language string) (*models.Curriculum, error) {
	curriculum, ok := r.curricula[curriculumKey(studentID, language)]
	if !ok {
		return nil, fmt.Errorf("curriculum for %s (%s): %w", studentID, language, db.ErrNotFound)
	}
	return curriculum, nil
}

func (r *fakeCurriculumRepo) SaveCurriculum(curriculum *models.Curriculum) error {
	r.saves++
	r.curricula[curriculumKey(curriculum.StudentID, curriculum.Language)] = curriculum
	return nil
}

func (r *fakeCurriculumRepo) IncrementCompletedWeeks(studentID, language string) (*models.Curriculum, error) {
	curriculum, err := r.GetCurriculum(studentID, language)
	if err != nil {
		return nil, err
	}
	if curriculum.CompletedWeeks < curriculum.TotalWeeks {
		curriculum.CompletedWeeks++
	}
	return curriculum, nil
}

func (r *fakeCurriculumRepo) Close() error { return nil }

type fakeChatRepo struct {
	interactions []*models.ChatInteraction
	evaluations  []*models.ChatEvaluation
	results      []*models.AssessmentResult
}

func (r *fakeChatRepo) AppendInteraction(interaction *models.ChatInteraction) error {
	r.interactions = append(r.interactions, interaction)
	return nil
}

func (r *fakeChatRepo) GetRecentInteractions(studentID string, limit int) ([]*models.ChatInteraction, error) {
	var recent []*models.ChatInteraction
	for i := len(r.interactions) - 1; i >= 0 && len(recent) < limit; i-- {
		if r.interactions[i].StudentID == studentID {
			recent = append(recent, r.interactions[i])
		}
	}
	return recent, nil
}

func (r *fakeChatRepo) SaveEvaluation(evaluation *models.ChatEvaluation) error {
	r.evaluations = append(r.evaluations, evaluation)
	return nil
}

func (r *fakeChatRepo) SaveAssessmentResult(result *models.AssessmentResult) error {
	r.results = append(r.results, result)
	return nil
}

func (r *fakeChatRepo) Close() error { return nil }

type fakeMaterialRepo struct {
	materials []*models.Material
}

func (r *fakeMaterialRepo) AddMaterial(material *models.Material) error {
	for i, existing := range r.materials {
		if existing.ID == material.ID {
			r.materials[i] = material
			return nil
		}
	}
	r.materials = append(r.materials, material)
	return nil
}

func (r *fakeMaterialRepo) GetAllMaterials() ([]*models.Material, error) {
	return r.materials, nil
}

func (r *fakeMaterialRepo) GetMaterialsByFilter(topic, level string) ([]*models.Material, error) {
	var matched []*models.Material
	for _, m := range r.materials {
		if topic != "" && m.Topic != topic {
			continue
		}
		if level != "" && m.Level != level {
			continue
		}
		matched = append(matched, m)
	}
	return matched, nil
}

func (r *fakeMaterialRepo) CountMaterials() (int, error) { return len(r.materials), nil }
func (r *fakeMaterialRepo) Close() error                 { return nil }

func testProfile() *models.StudentProfile {
	return &models.StudentProfile{
		StudentID:      "student-1",
		Name:           "Ana",
		NativeLanguage: "Portuguese",
		TargetLanguage: "English",
		CurrentLevel:   2,
		TargetLevel:    4,
		LearningStyle:  "visual",
		Goals:          "travel and work",
	}
}

func newMockService(t *testing.T, students *fakeStudentRepo, curricula *fakeCurriculumRepo, chats *fakeChatRepo, materials *fakeMaterialRepo) *Service {
	t.Helper()
	searcher, err := retrieval.NewService(retrieval.ModeLexical, materials, nil)
	require.NoError(t, err)
	return NewService(nil, students, curricula, chats, searcher, time.Second)
}

// scriptedClient stands in for a model backend: a fixed completion or a
// fixed failure.
type scriptedClient struct {
	response string
	err      error
}

func (c *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newScriptedService(t *testing.T, client llm.Client, materials *fakeMaterialRepo) *Service {
	t.Helper()
	searcher, err := retrieval.NewService(retrieval.ModeLexical, materials, nil)
	require.NoError(t, err)
	return NewService(client, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, searcher, time.Second)
}

func TestPlanCurriculumMockModeIsDeterministic(t *testing.T) {
	students := newFakeStudentRepo(testProfile())

	var payloads [][]byte
	for i := 0; i < 2; i++ {
		// Fresh stores each round so both runs generate from scratch.
		svc := newMockService(t, students, newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})
		plan, err := svc.PlanCurriculum(context.Background(), "student-1", 24, false)
		require.NoError(t, err)

		encoded, err := json.Marshal(plan)
		require.NoError(t, err)
		payloads = append(payloads, encoded)
	}

	assert.Equal(t, string(payloads[0]), string(payloads[1]))
}

func TestPlanCurriculumNewStudent(t *testing.T) {
	curricula := newFakeCurriculumRepo()
	svc := newMockService(t, newFakeStudentRepo(testProfile()), curricula, &fakeChatRepo{}, &fakeMaterialRepo{})

	plan, err := svc.PlanCurriculum(context.Background(), "student-1", 0, false)
	require.NoError(t, err)

	assert.True(t, plan.PlanIsNew)
	assert.Equal(t, models.DefaultCurriculumWeeks, plan.TotalWeeks)
	assert.Equal(t, 1, plan.NextWeek)
	assert.False(t, plan.IsLastWeek)
	assert.Equal(t, "A2", plan.LevelFrom)
	assert.Equal(t, "B2", plan.LevelTo)
	assert.NotEmpty(t, plan.NextTopics)
	assert.Equal(t, 1, curricula.saves)

	// Week numbers must be exactly 1..total with no gaps.
	require.Len(t, plan.TopicsByWeek, plan.TotalWeeks)
	for i, week := range plan.TopicsByWeek {
		assert.Equal(t, i+1, week.Week)
		assert.NotEmpty(t, week.Topics)
	}
}

func TestPlanCurriculumReusesExistingPlan(t *testing.T) {
	curricula := newFakeCurriculumRepo()
	svc := newMockService(t, newFakeStudentRepo(testProfile()), curricula, &fakeChatRepo{}, &fakeMaterialRepo{})

	first, err := svc.PlanCurriculum(context.Background(), "student-1", 8, false)
	require.NoError(t, err)
	require.True(t, first.PlanIsNew)

	second, err := svc.PlanCurriculum(context.Background(), "student-1", 8, false)
	require.NoError(t, err)

	assert.False(t, second.PlanIsNew)
	assert.Equal(t, 1, curricula.saves)
	assert.Equal(t, first.TopicsByWeek, second.TopicsByWeek)
}

func TestPlanCurriculumForceRegenerate(t *testing.T) {
	curricula := newFakeCurriculumRepo()
	svc := newMockService(t, newFakeStudentRepo(testProfile()), curricula, &fakeChatRepo{}, &fakeMaterialRepo{})

	_, err := svc.PlanCurriculum(context.Background(), "student-1", 8, false)
	require.NoError(t, err)

	plan, err := svc.PlanCurriculum(context.Background(), "student-1", 8, true)
	require.NoError(t, err)

	assert.True(t, plan.PlanIsNew)
	assert.Equal(t, 0, plan.CompletedWeeks)
	assert.Equal(t, 2, curricula.saves)
}

func TestPlanCurriculumClampsWeekCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"below minimum", 1, models.MinCurriculumWeeks},
		{"above maximum", 200, models.MaxCurriculumWeeks},
		{"in range", 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})
			plan, err := svc.PlanCurriculum(context.Background(), "student-1", tt.requested, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.TotalWeeks)
		})
	}
}

func TestPlanCurriculumUnknownStudent(t *testing.T) {
	svc := newMockService(t, newFakeStudentRepo(), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})

	_, err := svc.PlanCurriculum(context.Background(), "missing", 8, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestPlanCurriculumFallsBackOnGarbledCompletion(t *testing.T) {
	client := &scriptedClient{response: "Sure! Here is a study plan: first learn greetings, then numbers."}
	svc := newScriptedService(t, client, &fakeMaterialRepo{})

	plan, err := svc.PlanCurriculum(context.Background(), "student-1", 4, false)
	require.NoError(t, err)

	// Unextractable completion lands on the canned rotating plan.
	require.Len(t, plan.TopicsByWeek, 4)
	assert.Equal(t, fallbackTopicCycle[0], plan.TopicsByWeek[0].Topics)
	assert.Equal(t, fallbackTopicCycle[1], plan.TopicsByWeek[1].Topics)
	assert.Equal(t, "A2", plan.LevelFrom)
}

func TestPlanCurriculumFallsBackOnInvalidCompletion(t *testing.T) {
	// Extractable JSON, but missing required fields, so validation rejects it.
	client := &scriptedClient{response: `{"total_weeks": 4}`}
	svc := newScriptedService(t, client, &fakeMaterialRepo{})

	plan, err := svc.PlanCurriculum(context.Background(), "student-1", 4, false)
	require.NoError(t, err)

	require.Len(t, plan.TopicsByWeek, 4)
	assert.Equal(t, fallbackTopicCycle[0], plan.TopicsByWeek[0].Topics)
}

func TestPlanCurriculumRepairsModelWeekNumbering(t *testing.T) {
	client := &scriptedClient{response: `Here you go:
{"total_weeks": 3, "level_from": "B1", "level_to": "C1", "topics_by_week": [
  {"week": 1, "topics": ["Idioms"]},
  {"week": 7, "topics": ["Phrasal Verbs"]},
  {"week": 7, "topics": ["Reported Speech"]},
  {"week": 9, "topics": ["Passive Voice"]}
]}`}
	svc := newScriptedService(t, client, &fakeMaterialRepo{})

	plan, err := svc.PlanCurriculum(context.Background(), "student-1", 3, false)
	require.NoError(t, err)

	require.Len(t, plan.TopicsByWeek, 3)
	assert.Equal(t, []string{"Idioms"}, plan.TopicsByWeek[0].Topics)
	assert.Equal(t, []string{"Phrasal Verbs"}, plan.TopicsByWeek[1].Topics)
	assert.Equal(t, []string{"Reported Speech"}, plan.TopicsByWeek[2].Topics)
	for i, week := range plan.TopicsByWeek {
		assert.Equal(t, i+1, week.Week)
	}
	// Levels come from the profile, not from whatever the model claims.
	assert.Equal(t, "A2", plan.LevelFrom)
	assert.Equal(t, "B2", plan.LevelTo)
}

func TestGenerateTheoryTimeoutFallsBackToArchive(t *testing.T) {
	materials := &fakeMaterialRepo{}
	require.NoError(t, materials.AddMaterial(&models.Material{
		ID:      "m1",
		Topic:   "Past Tense",
		Level:   "A2",
		Content: "The past simple describes finished actions: walked, talked, played.",
	}))

	client := &scriptedClient{err: context.DeadlineExceeded}
	svc := newScriptedService(t, client, materials)

	lesson, err := svc.GenerateTheory(context.Background(), "Past Tense", 8, "A2", "English")
	require.NoError(t, err)

	assert.Equal(t, "archive", lesson.GeneratedBy)
	assert.Contains(t, lesson.Content, "past simple")
	assert.Empty(t, lesson.Error)
}

func TestGenerateTheoryGarbledWithEmptyArchive(t *testing.T) {
	client := &scriptedClient{response: "I am unable to produce JSON today."}
	svc := newScriptedService(t, client, &fakeMaterialRepo{})

	lesson, err := svc.GenerateTheory(context.Background(), "Subjunctive", 8, "A2", "English")
	require.NoError(t, err)

	assert.Equal(t, "error", lesson.GeneratedBy)
	assert.NotEmpty(t, lesson.Error)
	assert.Contains(t, lesson.Content, "Could not generate lesson")
}

func TestGenerateQuizGarbledCompletionIsTerminal(t *testing.T) {
	client := &scriptedClient{response: "no json here"}
	svc := newScriptedService(t, client, &fakeMaterialRepo{})

	_, err := svc.GenerateQuiz(context.Background(), "student-1", "Food", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz generation failed")
}

func TestNextWeekProgression(t *testing.T) {
	curriculum := fallbackCurriculum("English", "A1", "B1", 4)

	for completed := 0; completed < 4; completed++ {
		curriculum.CompletedWeeks = completed
		next := nextWeekFor(curriculum)
		assert.Equal(t, completed+1, next.Week)
		assert.Equal(t, completed+1 == 4, next.IsLast)
		assert.NotEmpty(t, next.Topics)
	}

	// Past the end of the plan: terminal placeholder, still flagged last.
	curriculum.CompletedWeeks = 4
	next := nextWeekFor(curriculum)
	assert.Equal(t, 5, next.Week)
	assert.True(t, next.IsLast)
	assert.Equal(t, terminalWeekTopics, next.Topics)
}

func TestRepairWeeks(t *testing.T) {
	tests := []struct {
		name  string
		input []models.WeekTopics
	}{
		{
			"gapped numbering",
			[]models.WeekTopics{
				{Week: 1, Topics: []string{"a"}},
				{Week: 5, Topics: []string{"b"}},
				{Week: 9, Topics: []string{"c"}},
			},
		},
		{
			"duplicate weeks",
			[]models.WeekTopics{
				{Week: 2, Topics: []string{"a"}},
				{Week: 2, Topics: []string{"b"}},
			},
		},
		{
			"too many weeks",
			[]models.WeekTopics{
				{Week: 1, Topics: []string{"a"}},
				{Week: 2, Topics: []string{"b"}},
				{Week: 3, Topics: []string{"c"}},
				{Week: 4, Topics: []string{"d"}},
				{Week: 5, Topics: []string{"e"}},
			},
		},
		{
			"empty topic lists dropped",
			[]models.WeekTopics{
				{Week: 1, Topics: nil},
				{Week: 2, Topics: []string{"a"}},
			},
		},
		{"no weeks at all", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curriculum := &models.Curriculum{TopicsByWeek: tt.input}
			repairWeeks(curriculum, 3)

			assert.Equal(t, 3, curriculum.TotalWeeks)
			require.Len(t, curriculum.TopicsByWeek, 3)
			for i, week := range curriculum.TopicsByWeek {
				assert.Equal(t, i+1, week.Week)
				assert.NotEmpty(t, week.Topics)
			}
		})
	}
}

func TestGenerateTheoryMockMode(t *testing.T) {
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})

	lesson, err := svc.GenerateTheory(context.Background(), "Past Tense", 8, "A2", "English")
	require.NoError(t, err)

	assert.Equal(t, "Past Tense", lesson.Topic)
	assert.NotEmpty(t, lesson.Title)
	assert.NotEmpty(t, lesson.Content)
	assert.Empty(t, lesson.Error)
}

func TestTheoryFallbackUsesArchivedMaterial(t *testing.T) {
	materials := &fakeMaterialRepo{}
	require.NoError(t, materials.AddMaterial(&models.Material{
		ID:      "m1",
		Topic:   "Past Tense",
		Level:   "A2",
		Content: "The past simple describes finished actions: walked, talked, played.",
	}))

	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, materials)

	lesson := svc.theoryFallback(context.Background(), "Past Tense", errors.New("model unavailable"))
	assert.Equal(t, "archive", lesson.GeneratedBy)
	assert.Contains(t, lesson.Content, "past simple")
	assert.Empty(t, lesson.Error)
}

func TestTheoryFallbackWithEmptyArchive(t *testing.T) {
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})

	lesson := svc.theoryFallback(context.Background(), "Subjunctive", errors.New("model unavailable"))
	assert.Equal(t, "error", lesson.GeneratedBy)
	assert.NotEmpty(t, lesson.Error)
	assert.Contains(t, lesson.Content, "Could not generate lesson")
}

func TestGenerateQuizMockMode(t *testing.T) {
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})

	quiz, err := svc.GenerateQuiz(context.Background(), "student-1", "Food Vocabulary", 5)
	require.NoError(t, err)

	assert.Equal(t, "quiz_food_vocabulary", quiz.QuizID)
	assert.Equal(t, "Food Vocabulary", quiz.Topic)
	assert.Len(t, quiz.Questions, 5)
	assert.Equal(t, 2, quiz.DifficultyLevel)
	for i, question := range quiz.Questions {
		assert.Equal(t, i+1, question.QuestionID)
		assert.NotEmpty(t, question.CorrectAnswer)
	}
}

func TestQuizID(t *testing.T) {
	assert.Equal(t, "quiz_past_tense", quizID("Past Tense"))
	assert.Equal(t, "quiz_greetings", quizID("Greetings"))
}

func TestGenerateExercisesMockMode(t *testing.T) {
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})

	exercises, err := svc.GenerateExercises(context.Background(), "student-1", "Directions", 3)
	require.NoError(t, err)

	require.Len(t, exercises, 3)
	for i, exercise := range exercises {
		assert.Equal(t, i+1, exercise.QuestionID)
		assert.NotEmpty(t, exercise.Task)
	}
}

func TestChatAppendsToLog(t *testing.T) {
	chats := &fakeChatRepo{}
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), chats, &fakeMaterialRepo{})

	interaction, err := svc.Chat(context.Background(), "student-1", "How do I say hello?")
	require.NoError(t, err)

	assert.NotEmpty(t, interaction.Answer)
	require.Len(t, chats.interactions, 1)
	assert.Equal(t, "How do I say hello?", chats.interactions[0].Question)
}

func TestEvaluateChatWithoutHistory(t *testing.T) {
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), &fakeChatRepo{}, &fakeMaterialRepo{})

	_, err := svc.EvaluateChat(context.Background(), "student-1", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestEvaluateChatMockMode(t *testing.T) {
	chats := &fakeChatRepo{}
	svc := newMockService(t, newFakeStudentRepo(testProfile()), newFakeCurriculumRepo(), chats, &fakeMaterialRepo{})

	_, err := svc.Chat(context.Background(), "student-1", "How was your day?")
	require.NoError(t, err)

	evaluation, err := svc.EvaluateChat(context.Background(), "student-1", 10)
	require.NoError(t, err)

	assert.Equal(t, "student-1", evaluation.StudentID)
	assert.GreaterOrEqual(t, evaluation.OverallScore, 0.0)
	assert.LessOrEqual(t, evaluation.OverallScore, 100.0)
	assert.NotEmpty(t, evaluation.Feedback)
	require.Len(t, chats.evaluations, 1)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-5))
	assert.Equal(t, 100.0, clampScore(131))
	assert.Equal(t, 72.5, clampScore(72.5))
}
