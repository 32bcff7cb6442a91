package assess

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"langtutor/db"
	"langtutor/models"
	"langtutor/services/llm"
)

// PassingScore is the percentage at or above which a graded quiz advances
// the student to the next curriculum week.
const PassingScore = 60.0

const FEEDBACK_PROMPT = `You are a supportive language tutor.
A student scored %.1f%% (%d of %d correct) on a quiz about "%s".
Questions they missed:
%s
Write 2-3 sentences of encouraging, specific feedback in English. Respond with plain text only.`

// Service grades submitted quizzes. Grading itself is pure arithmetic; the
// model is only consulted for the feedback text, and a canned line stands in
// when it is unavailable.
type Service struct {
	llm       llm.Client
	students  db.StudentRepository
	curricula db.CurriculumRepository
	chats     db.ChatRepository
	timeout   time.Duration
}

func NewService(client llm.Client, students db.StudentRepository, curricula db.CurriculumRepository, chats db.ChatRepository, timeout time.Duration) *Service {
	return &Service{
		llm:       client,
		students:  students,
		curricula: curricula,
		chats:     chats,
		timeout:   timeout,
	}
}

// EvaluateQuiz grades a submission, persists the result, and advances the
// student's curriculum week when the score passes. Persistence failures are
// logged but never cost the student their grade.
func (s *Service) EvaluateQuiz(ctx context.Context, submission *models.QuizSubmission) (*models.AssessmentResult, error) {
	quiz := &submission.Quiz
	log.Printf("[INFO] Grading quiz %s for student %s", quiz.QuizID, submission.StudentID)

	profile, err := s.students.GetStudent(submission.StudentID)
	if err != nil {
		return nil, err
	}

	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz %s has no questions", quiz.QuizID)
	}

	details := make([]models.AnswerDetail, 0, len(quiz.Questions))
	correct := 0
	for _, question := range quiz.Questions {
		answer := submission.Answers[question.QuestionID]
		isCorrect := answerMatches(question, answer)
		if isCorrect {
			correct++
		}
		details = append(details, models.AnswerDetail{
			QuestionID:    question.QuestionID,
			QuestionText:  question.Text,
			StudentAnswer: answer,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
		})
	}

	total := len(quiz.Questions)
	score := float64(correct) / float64(total) * 100

	result := &models.AssessmentResult{
		StudentID:      submission.StudentID,
		QuizID:         quiz.QuizID,
		Topic:          quiz.Topic,
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Feedback:       s.feedback(ctx, quiz.Topic, score, correct, total, details),
		Details:        details,
		CompletedAt:    time.Now().UTC(),
	}

	if err := s.chats.SaveAssessmentResult(result); err != nil {
		log.Printf("[ERROR] Failed to save assessment result for %s: %v", submission.StudentID, err)
	}

	if score >= PassingScore {
		s.advanceWeek(submission.StudentID, profile.TargetLanguage)
	}

	log.Printf("[INFO] Student %s scored %.1f%% on %s (%d/%d)", submission.StudentID, score, quiz.QuizID, correct, total)
	return result, nil
}

// AdvanceWeek bumps the completed-week counter without a quiz, for manual
// progression.
func (s *Service) AdvanceWeek(studentID string) (*models.Curriculum, error) {
	profile, err := s.students.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	return s.curricula.IncrementCompletedWeeks(studentID, profile.TargetLanguage)
}

func (s *Service) advanceWeek(studentID, language string) {
	curriculum, err := s.curricula.IncrementCompletedWeeks(studentID, language)
	if err != nil {
		log.Printf("[WARN] Could not advance curriculum week for %s: %v", studentID, err)
		return
	}
	log.Printf("[INFO] Student %s advanced to %d/%d completed weeks", studentID, curriculum.CompletedWeeks, curriculum.TotalWeeks)
}

// answerMatches compares normalized answers. Multiple-choice answers also
// accept the bare option letter ("A" for "A) option one") and vice versa.
func answerMatches(question models.QuizQuestion, answer string) bool {
	given := normalizeAnswer(answer)
	want := normalizeAnswer(question.CorrectAnswer)
	if given == "" {
		return false
	}
	if given == want {
		return true
	}

	if question.Type == "multiple_choice" {
		return optionLetter(given) != "" && optionLetter(given) == optionLetter(want)
	}
	return false
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// optionLetter extracts the leading choice letter from forms like "a",
// "a)", or "a) option one". Anything else yields "".
func optionLetter(answer string) string {
	if answer == "" {
		return ""
	}
	head := answer[0]
	if head < 'a' || head > 'z' {
		return ""
	}
	if len(answer) == 1 {
		return string(head)
	}
	switch answer[1] {
	case ')', '.', ' ':
		return string(head)
	}
	return ""
}

func (s *Service) feedback(ctx context.Context, topic string, score float64, correct, total int, details []models.AnswerDetail) string {
	if s.llm == nil {
		return cannedFeedback(score)
	}

	var missed []string
	for _, detail := range details {
		if !detail.IsCorrect {
			missed = append(missed, fmt.Sprintf("- %s (answered %q, expected %q)", detail.QuestionText, detail.StudentAnswer, detail.CorrectAnswer))
		}
	}
	missedBlock := "(none)"
	if len(missed) > 0 {
		missedBlock = strings.Join(missed, "\n")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(FEEDBACK_PROMPT, score, correct, total, topic, missedBlock)
	text, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[WARN] Feedback generation failed, using canned feedback: %v", err)
		return cannedFeedback(score)
	}
	return strings.TrimSpace(text)
}

func cannedFeedback(score float64) string {
	switch {
	case score >= 90:
		return "Excellent work! You have a strong grasp of this topic."
	case score >= PassingScore:
		return "Good job! Review the questions you missed and you will master this topic."
	default:
		return "Keep practicing. Revisit the lesson for this topic and try the quiz again."
	}
}
