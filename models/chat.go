package models

import "time"

// ChatInteraction is one Q&A pair in the append-only chat log. Interactions
// are never mutated after insert.
type ChatInteraction struct {
	ID        int       `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatEvaluation is a derived summary over the most recent interactions.
type ChatEvaluation struct {
	StudentID         string        `json:"student_id"`
	OverallScore      float64       `json:"overall_score" jsonschema:"required"`
	Feedback          string        `json:"feedback" jsonschema:"required"`
	Errors            []ErrorRecord `json:"errors"`
	FollowUpQuestions []string      `json:"follow_up_questions"`
	CreatedAt         time.Time     `json:"created_at,omitempty"`
}

func (ChatEvaluation) Kind() ContentKind { return KindChatEvaluation }

type ErrorRecord struct {
	ErrorType     string `json:"error_type" jsonschema:"required,enum=grammar,enum=vocabulary,enum=pronunciation,enum=spelling"`
	OriginalText  string `json:"original_text" jsonschema:"required"`
	CorrectedText string `json:"corrected_text" jsonschema:"required"`
	Explanation   string `json:"explanation,omitempty"`
}

// QuizSubmission is a completed quiz sent back for grading: the quiz as it
// was issued plus the student's answers keyed by question id.
type QuizSubmission struct {
	StudentID string         `json:"student_id"`
	Quiz      Quiz           `json:"quiz"`
	Answers   map[int]string `json:"answers"`
}

// AssessmentResult is the stored outcome of a quiz evaluation, append-only.
type AssessmentResult struct {
	ID             int            `json:"id"`
	StudentID      string         `json:"student_id"`
	QuizID         string         `json:"quiz_id"`
	Topic          string         `json:"topic"`
	Score          float64        `json:"score"`
	CorrectCount   int            `json:"correct_count"`
	TotalQuestions int            `json:"total_questions"`
	Feedback       string         `json:"feedback"`
	Details        []AnswerDetail `json:"details"`
	CompletedAt    time.Time      `json:"completed_at"`
}

type AnswerDetail struct {
	QuestionID    int    `json:"question_id"`
	QuestionText  string `json:"question_text"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}
