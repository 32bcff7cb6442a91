package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"langtutor/db"
	"langtutor/models"
	"langtutor/services/llm"
	"langtutor/services/retrieval"
	"langtutor/services/schema"

	"github.com/google/uuid"
)

// Service is the generation orchestrator. One instance serves all content
// kinds; it holds no per-request state and every dependency is injected, so
// calls are re-entrant. When the model client is nil the service runs in mock
// mode and substitutes canned values without ever calling out.
type Service struct {
	llm       llm.Client
	students  db.StudentRepository
	curricula db.CurriculumRepository
	chats     db.ChatRepository
	searcher  retrieval.Searcher
	timeout   time.Duration

	curriculumSchema *schema.Schema
	theorySchema     *schema.Schema
	quizSchema       *schema.Schema
	exerciseSchema   *schema.Schema
	dialogueSchema   *schema.Schema
	evaluationSchema *schema.Schema
}

func NewService(
	client llm.Client,
	students db.StudentRepository,
	curricula db.CurriculumRepository,
	chats db.ChatRepository,
	searcher retrieval.Searcher,
	timeout time.Duration,
) *Service {
	if client == nil {
		log.Printf("[WARN] Generation service running in mock mode")
	}

	return &Service{
		llm:       client,
		students:  students,
		curricula: curricula,
		chats:     chats,
		searcher:  searcher,
		timeout:   timeout,

		curriculumSchema: schema.For[models.Curriculum](),
		theorySchema:     schema.For[models.TheoryLesson](),
		quizSchema:       schema.For[models.Quiz](),
		exerciseSchema:   schema.For[models.Exercise](),
		dialogueSchema:   schema.For[models.Dialogue](),
		evaluationSchema: schema.For[models.ChatEvaluation](),
	}
}

// MockMode reports whether the model client is absent.
func (s *Service) MockMode() bool {
	return s.llm == nil
}

// logGenerated is the shared success log across the content variants.
func logGenerated(content models.GeneratedContent, subject string) {
	log.Printf("[INFO] Generated %s content for %q", content.Kind(), subject)
}

// callModel wraps the single model call with a bounded timeout. A timeout is
// treated exactly like a parse failure by the callers: route to fallback.
func (s *Service) callModel(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.llm.Generate(ctx, prompt)
}

// generateInto runs the model -> extract -> validate pipeline and decodes
// into T. Any failure along the way is returned for the caller to route to
// its kind-specific fallback; errors never escape the orchestrator raw.
func generateInto[T any](s *Service, ctx context.Context, prompt string, shape *schema.Schema) (*T, error) {
	completion, err := s.callModel(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	candidate, err := llm.ExtractJSON(completion)
	if err != nil {
		return nil, err
	}

	return schema.Decode[T](shape, candidate)
}

// PlanCurriculum creates or reuses the syllabus for the student's current
// target language and resolves the next uncompleted week. Missing students
// surface as not-found; everything else degrades to the fallback plan.
func (s *Service) PlanCurriculum(ctx context.Context, studentID string, totalWeeks int, forceRegenerate bool) (*models.CurriculumPlan, error) {
	log.Printf("[INFO] Planning curriculum for student %s (force=%v)", studentID, forceRegenerate)

	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	if totalWeeks == 0 {
		totalWeeks = models.DefaultCurriculumWeeks
	}
	if totalWeeks < models.MinCurriculumWeeks {
		totalWeeks = models.MinCurriculumWeeks
	}
	if totalWeeks > models.MaxCurriculumWeeks {
		totalWeeks = models.MaxCurriculumWeeks
	}

	language := profile.TargetLanguage

	existing, err := s.curricula.GetCurriculum(studentID, language)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		log.Printf("[ERROR] Failed to load curriculum for %s: %v", studentID, err)
	}

	planIsNew := existing == nil || forceRegenerate

	var curriculum *models.Curriculum
	if !planIsNew {
		curriculum = existing
		log.Printf("[INFO] Using existing plan for %s (%s)", studentID, language)
	} else {
		log.Printf("[INFO] Generating new curriculum for %s (%s)", studentID, language)
		curriculum = s.generateCurriculum(ctx, profile, totalWeeks)
		curriculum.StudentID = studentID
		curriculum.Language = language
		curriculum.CompletedWeeks = 0

		if err := s.curricula.SaveCurriculum(curriculum); err != nil {
			log.Printf("[ERROR] Failed to save curriculum for %s: %v", studentID, err)
		}
	}

	next := nextWeekFor(curriculum)

	return &models.CurriculumPlan{
		StudentID:      studentID,
		NextWeek:       next.Week,
		NextTopics:     next.Topics,
		IsLastWeek:     next.IsLast,
		TotalWeeks:     curriculum.TotalWeeks,
		CompletedWeeks: curriculum.CompletedWeeks,
		LevelFrom:      curriculum.LevelFrom,
		LevelTo:        curriculum.LevelTo,
		Message:        fmt.Sprintf("Week %d: %s", next.Week, strings.Join(next.Topics, ", ")),
		PlanIsNew:      planIsNew,
		TopicsByWeek:   curriculum.TopicsByWeek,
	}, nil
}

// NextTopics resolves the next week without regenerating anything.
func (s *Service) NextTopics(ctx context.Context, studentID string) (*models.CurriculumPlan, error) {
	return s.PlanCurriculum(ctx, studentID, 0, false)
}

func (s *Service) generateCurriculum(ctx context.Context, profile *models.StudentProfile, totalWeeks int) *models.Curriculum {
	levelFrom := models.CEFRForLevel(profile.CurrentLevel)
	levelTo := models.CEFRForLevel(profile.TargetLevel)
	language := profile.TargetLanguage

	if s.MockMode() {
		return fallbackCurriculum(language, levelFrom, levelTo, totalWeeks)
	}

	prompt := buildCurriculumPrompt(language, levelFrom, levelTo, profile.Goals, totalWeeks)

	curriculum, err := generateInto[models.Curriculum](s, ctx, prompt, s.curriculumSchema)
	if err != nil {
		log.Printf("[WARN] Curriculum generation failed, using fallback: %v", err)
		return fallbackCurriculum(language, levelFrom, levelTo, totalWeeks)
	}

	curriculum.Language = language
	curriculum.LevelFrom = levelFrom
	curriculum.LevelTo = levelTo
	repairWeeks(curriculum, totalWeeks)

	log.Printf("[INFO] Model produced a %d-week curriculum for %s", curriculum.TotalWeeks, language)
	return curriculum
}

// repairWeeks enforces the week-numbering invariant: numbers are exactly
// 1..totalWeeks with no gaps or duplicates. Model output that deviates is
// renumbered in order, truncated past the requested count, and default-filled
// from the rotating cycle when short.
func repairWeeks(curriculum *models.Curriculum, totalWeeks int) {
	curriculum.TotalWeeks = totalWeeks

	repaired := make([]models.WeekTopics, 0, totalWeeks)
	for _, week := range curriculum.TopicsByWeek {
		if len(repaired) == totalWeeks {
			break
		}
		if len(week.Topics) == 0 {
			continue
		}
		repaired = append(repaired, models.WeekTopics{
			Week:   len(repaired) + 1,
			Topics: week.Topics,
		})
	}

	for len(repaired) < totalWeeks {
		repaired = append(repaired, models.WeekTopics{
			Week:   len(repaired) + 1,
			Topics: fallbackTopicCycle[len(repaired)%len(fallbackTopicCycle)],
		})
	}

	curriculum.TopicsByWeek = repaired
}

// GenerateTheory produces a markdown theory lesson, grounded on retrieved
// materials when any exist. Successful lessons are opportunistically archived
// into the materials corpus so later failures can fall back to them.
func (s *Service) GenerateTheory(ctx context.Context, topic string, week int, level, language string) (*models.TheoryLesson, error) {
	log.Printf("[INFO] Generating theory lesson for topic %q (week %d, %s %s)", topic, week, language, level)

	if s.MockMode() {
		return mockTheoryLesson(topic, level, language), nil
	}

	// Grounding is best effort: an empty or failed search just means an
	// unassisted prompt.
	grounding := s.searchContext(ctx, topic, level, language, 3)

	prompt := buildTheoryPrompt(topic, week, level, language, grounding)

	lesson, err := generateInto[models.TheoryLesson](s, ctx, prompt, s.theorySchema)
	if err != nil {
		log.Printf("[WARN] Theory generation failed for %q: %v", topic, err)
		return s.theoryFallback(ctx, topic, err), nil
	}

	lesson.Topic = topic
	lesson.GeneratedBy = "model"
	s.archiveTheory(ctx, lesson, topic, level, language)
	logGenerated(lesson, topic)

	return lesson, nil
}

func (s *Service) searchContext(ctx context.Context, topic, level, language string, limit int) []models.ScoredMaterial {
	query := fmt.Sprintf("%s lesson %s %s", language, topic, level)
	results, err := s.searcher.Search(ctx, query, retrieval.Filters{Topic: topic}, limit)
	if err != nil {
		log.Printf("[WARN] Context retrieval failed for %q: %v", topic, err)
		return nil
	}
	return results
}

// theoryFallback looks for previously archived material on the topic before
// giving up with an explicit could-not-generate payload. Failure is never
// disguised as a model-authored lesson.
func (s *Service) theoryFallback(ctx context.Context, topic string, cause error) *models.TheoryLesson {
	results, err := s.searcher.Search(ctx, topic, retrieval.Filters{Topic: topic}, 1)
	if err == nil && len(results) > 0 {
		best := results[0]
		log.Printf("[INFO] Using archived material %s as theory fallback for %q", best.ID, topic)
		return &models.TheoryLesson{
			Title:       fmt.Sprintf("Lesson: %s (from archive)", topic),
			Topic:       topic,
			Content:     best.Content,
			KeyPoints:   []string{"Content retrieved from backup storage."},
			GeneratedBy: "archive",
		}
	}

	return &models.TheoryLesson{
		Title:       "Error generating lesson",
		Topic:       topic,
		Content:     fmt.Sprintf("Could not generate lesson: %v. The archive holds no material for this topic.", cause),
		KeyPoints:   []string{},
		GeneratedBy: "error",
		Error:       cause.Error(),
	}
}

func (s *Service) archiveTheory(ctx context.Context, lesson *models.TheoryLesson, topic, level, language string) {
	material := &models.Material{
		ID:       uuid.NewString(),
		Topic:    topic,
		Level:    level,
		Language: language,
		Content:  lesson.Content,
		Source:   "theory_generator",
	}

	if err := s.searcher.AddMaterial(ctx, material); err != nil {
		log.Printf("[ERROR] Failed to archive theory lesson for %q: %v", topic, err)
		return
	}
	log.Printf("[INFO] Archived generated theory lesson as material %s", material.ID)
}

// GenerateQuiz builds a quiz sized for the student's current level. Unlike
// curricula there is no canned disguise for a broken completion: the error is
// terminal output.
func (s *Service) GenerateQuiz(ctx context.Context, studentID, topic string, numQuestions int) (*models.Quiz, error) {
	log.Printf("[INFO] Generating %d-question quiz on %q for student %s", numQuestions, topic, studentID)

	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	if numQuestions <= 0 {
		numQuestions = 5
	}

	if s.MockMode() {
		return mockQuiz(topic, profile.CurrentLevel, numQuestions), nil
	}

	level := models.CEFRForLevel(profile.CurrentLevel)
	prompt := buildQuizPrompt(profile.TargetLanguage, level, topic, numQuestions)

	quiz, err := generateInto[models.Quiz](s, ctx, prompt, s.quizSchema)
	if err != nil {
		log.Printf("[ERROR] Quiz generation failed for %q: %v", topic, err)
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	quiz.Topic = topic
	if quiz.QuizID == "" {
		quiz.QuizID = quizID(topic)
	}
	if quiz.DifficultyLevel == 0 {
		quiz.DifficultyLevel = profile.CurrentLevel
	}

	log.Printf("[INFO] Generated quiz %s with %d questions", quiz.QuizID, len(quiz.Questions))
	return quiz, nil
}

func quizID(topic string) string {
	return "quiz_" + strings.ReplaceAll(strings.ToLower(topic), " ", "_")
}

// GenerateExercises runs a sequential batch: one model call per exercise, no
// fan-out. Partial failure is tolerated; only a fully failed batch is an
// error.
func (s *Service) GenerateExercises(ctx context.Context, studentID, topic string, count int) ([]*models.Exercise, error) {
	log.Printf("[INFO] Generating %d exercises on %q for student %s", count, topic, studentID)

	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	if count <= 0 {
		count = 3
	}

	level := models.CEFRForLevel(profile.CurrentLevel)

	exercises := make([]*models.Exercise, 0, count)
	for number := 1; number <= count; number++ {
		if s.MockMode() {
			exercises = append(exercises, mockExercise(topic, number))
			continue
		}

		prompt := buildExercisePrompt(profile.TargetLanguage, level, topic, number)
		exercise, err := generateInto[models.Exercise](s, ctx, prompt, s.exerciseSchema)
		if err != nil {
			log.Printf("[WARN] Exercise %d/%d failed for %q: %v", number, count, topic, err)
			continue
		}

		exercise.QuestionID = number
		exercises = append(exercises, exercise)
	}

	if len(exercises) == 0 {
		return nil, fmt.Errorf("exercise generation failed: no exercise in the batch succeeded")
	}

	log.Printf("[INFO] Generated %d/%d exercises for %q", len(exercises), count, topic)
	return exercises, nil
}

// GenerateDialogue writes a short practice dialogue for the topic.
func (s *Service) GenerateDialogue(ctx context.Context, studentID, topic string) (*models.Dialogue, error) {
	log.Printf("[INFO] Generating dialogue on %q for student %s", topic, studentID)

	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	if s.MockMode() {
		return mockDialogue(topic, profile.TargetLanguage), nil
	}

	level := models.CEFRForLevel(profile.CurrentLevel)
	grounding := s.searchContext(ctx, topic, level, profile.TargetLanguage, 1)
	prompt := buildDialoguePrompt(profile.TargetLanguage, level, topic, grounding)

	dialogue, err := generateInto[models.Dialogue](s, ctx, prompt, s.dialogueSchema)
	if err != nil {
		log.Printf("[ERROR] Dialogue generation failed for %q: %v", topic, err)
		return nil, fmt.Errorf("dialogue generation failed: %w", err)
	}

	dialogue.Topic = topic
	logGenerated(dialogue, topic)
	return dialogue, nil
}

// Chat answers a student question in plain text and appends the exchange to
// the interaction log. Log failures are absorbed: the answer still reaches
// the student.
func (s *Service) Chat(ctx context.Context, studentID, question string) (*models.ChatInteraction, error) {
	log.Printf("[INFO] Chat question from student %s", studentID)

	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	var answer string
	if s.MockMode() {
		answer = mockChatAnswer(question)
	} else {
		prompt := buildTutorChatPrompt(profile, question)
		answer, err = s.callModel(ctx, prompt)
		if err != nil {
			log.Printf("[WARN] Chat generation failed, using canned answer: %v", err)
			answer = mockChatAnswer(question)
		}
		answer = strings.TrimSpace(answer)
	}

	interaction := &models.ChatInteraction{
		StudentID: studentID,
		Question:  question,
		Answer:    answer,
	}

	if err := s.chats.AppendInteraction(interaction); err != nil {
		log.Printf("[ERROR] Failed to log chat interaction for %s: %v", studentID, err)
	}

	return interaction, nil
}

// EvaluateChat summarizes the student's most recent interactions into a
// scored evaluation. The evaluation is derived on demand and saved
// append-only; it is never mutated afterwards.
func (s *Service) EvaluateChat(ctx context.Context, studentID string, limit int) (*models.ChatEvaluation, error) {
	log.Printf("[INFO] Evaluating chat history for student %s", studentID)

	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 10
	}

	interactions, err := s.chats.GetRecentInteractions(studentID, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to load chat history for %s: %v", studentID, err)
		interactions = nil
	}
	if len(interactions) == 0 {
		return nil, fmt.Errorf("chat history for %s: %w", studentID, db.ErrNotFound)
	}

	var evaluation *models.ChatEvaluation
	if s.MockMode() {
		evaluation = mockChatEvaluation(studentID)
	} else {
		level := models.CEFRForLevel(profile.CurrentLevel)
		prompt := buildChatEvaluationPrompt(level, profile.TargetLanguage, interactions)

		evaluation, err = generateInto[models.ChatEvaluation](s, ctx, prompt, s.evaluationSchema)
		if err != nil {
			log.Printf("[ERROR] Chat evaluation failed for %s: %v", studentID, err)
			return nil, fmt.Errorf("chat evaluation failed: %w", err)
		}
	}

	evaluation.StudentID = studentID
	evaluation.OverallScore = clampScore(evaluation.OverallScore)
	evaluation.CreatedAt = time.Now().UTC()

	if err := s.chats.SaveEvaluation(evaluation); err != nil {
		log.Printf("[ERROR] Failed to save chat evaluation for %s: %v", studentID, err)
	}

	logGenerated(evaluation, studentID)
	return evaluation, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
