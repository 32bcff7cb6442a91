package models

// ContentKind discriminates the generated-content variants. The set is
// closed: every orchestrator operation produces exactly one of these.
type ContentKind string

const (
	KindCurriculum     ContentKind = "curriculum"
	KindTheory         ContentKind = "theory"
	KindQuiz           ContentKind = "quiz"
	KindExercise       ContentKind = "exercise"
	KindDialogue       ContentKind = "dialogue"
	KindChatEvaluation ContentKind = "chat_evaluation"
)

// GeneratedContent is the tagged union over content variants so callers can
// switch on Kind instead of digging through string-keyed maps.
type GeneratedContent interface {
	Kind() ContentKind
}

// TheoryLesson is a markdown-formatted theory lesson. GeneratedBy records
// whether the lesson came from the model, the fallback index search, or an
// explicit generation failure.
type TheoryLesson struct {
	Title       string   `json:"title" jsonschema:"required"`
	Topic       string   `json:"topic" jsonschema:"required"`
	Content     string   `json:"content" jsonschema:"required"`
	KeyPoints   []string `json:"key_points"`
	GeneratedBy string   `json:"generated_by,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (TheoryLesson) Kind() ContentKind { return KindTheory }

type Quiz struct {
	QuizID          string         `json:"quiz_id"`
	Topic           string         `json:"topic" jsonschema:"required"`
	DifficultyLevel int            `json:"difficulty_level"`
	Questions       []QuizQuestion `json:"questions" jsonschema:"required"`
}

func (Quiz) Kind() ContentKind { return KindQuiz }

type QuizQuestion struct {
	QuestionID    int      `json:"question_id" jsonschema:"required"`
	Type          string   `json:"type" jsonschema:"required,enum=multiple_choice,enum=fill_in_the_blank,enum=short_answer"`
	Text          string   `json:"text" jsonschema:"required"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer" jsonschema:"required"`
}

type Exercise struct {
	QuestionID    int      `json:"question_id" jsonschema:"required"`
	Type          string   `json:"type" jsonschema:"required,enum=vocabulary,enum=grammar,enum=dialogue,enum=translation,enum=listening,enum=pronunciation"`
	Task          string   `json:"task" jsonschema:"required"`
	Instructions  string   `json:"instructions" jsonschema:"required"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer" jsonschema:"required"`
	Explanation   string   `json:"explanation,omitempty"`
}

func (Exercise) Kind() ContentKind { return KindExercise }

type Dialogue struct {
	Title      string         `json:"title" jsonschema:"required"`
	Topic      string         `json:"topic"`
	Lines      []DialogueLine `json:"lines" jsonschema:"required"`
	Vocabulary []string       `json:"vocabulary"`
}

func (Dialogue) Kind() ContentKind { return KindDialogue }

type DialogueLine struct {
	Speaker     string `json:"speaker" jsonschema:"required"`
	Text        string `json:"text" jsonschema:"required"`
	Translation string `json:"translation,omitempty"`
}
