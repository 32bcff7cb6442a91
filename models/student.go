package models

import "time"

// Level ordinals run 1-6 and map onto the CEFR scale A1-C2.
const (
	MinLevel = 1
	MaxLevel = 6
)

var cefrScale = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// CEFRForLevel maps a level ordinal to its CEFR band, clamping out-of-range
// ordinals rather than indexing out of bounds: anything below 1 is A1,
// anything above 6 is C2.
func CEFRForLevel(level int) string {
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return cefrScale[level-1]
}

type StudentProfile struct {
	StudentID      string    `json:"student_id" db:"student_id"`
	Name           string    `json:"name" db:"name"`
	NativeLanguage string    `json:"native_language" db:"native_language"`
	TargetLanguage string    `json:"target_language" db:"target_language"`
	CurrentLevel   int       `json:"current_level" db:"current_level"`
	TargetLevel    int       `json:"target_level" db:"target_level"`
	LearningStyle  string    `json:"learning_style" db:"learning_style"`
	Goals          string    `json:"goals" db:"goals"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CreateStudentRequest struct {
	StudentID      string `json:"student_id"`
	Name           string `json:"name"`
	NativeLanguage string `json:"native_language"`
	TargetLanguage string `json:"target_language"`
	CurrentLevel   int    `json:"current_level"`
	TargetLevel    int    `json:"target_level"`
	LearningStyle  string `json:"learning_style"`
	Goals          string `json:"goals"`
}

// SwitchLanguageRequest re-targets a student at a new language. Levels are
// re-set along with the language since proficiency does not carry over.
type SwitchLanguageRequest struct {
	TargetLanguage string `json:"target_language"`
	CurrentLevel   int    `json:"current_level"`
	TargetLevel    int    `json:"target_level"`
}
