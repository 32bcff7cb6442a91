package models

import "time"

// Curriculum is the per-student, per-language multi-week topic schedule.
// A student may hold one curriculum per target language concurrently; the
// record is replaced wholesale on save (last writer wins).
type Curriculum struct {
	StudentID      string       `json:"student_id"`
	Language       string       `json:"language"`
	TotalWeeks     int          `json:"total_weeks" jsonschema:"required"`
	LevelFrom      string       `json:"level_from" jsonschema:"required"`
	LevelTo        string       `json:"level_to" jsonschema:"required"`
	CompletedWeeks int          `json:"completed_weeks"`
	TopicsByWeek   []WeekTopics `json:"topics_by_week" jsonschema:"required"`
	CreatedAt      time.Time    `json:"created_at,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at,omitempty"`
}

func (Curriculum) Kind() ContentKind { return KindCurriculum }

type WeekTopics struct {
	Week   int      `json:"week" jsonschema:"required"`
	Topics []string `json:"topics" jsonschema:"required"`
}

// NextWeek is the lesson pointer derived from completed_weeks: always
// completed_weeks + 1. When the plan has no entry for that week the caller
// synthesizes a terminal placeholder week with IsLast set.
type NextWeek struct {
	Week   int      `json:"week"`
	Topics []string `json:"topics"`
	IsLast bool     `json:"is_last"`
}

// CurriculumPlan is what the planner returns to the API layer: the stored
// curriculum plus the resolved next-week pointer.
type CurriculumPlan struct {
	StudentID      string       `json:"student_id"`
	NextWeek       int          `json:"next_week"`
	NextTopics     []string     `json:"next_topics"`
	IsLastWeek     bool         `json:"is_last_week"`
	TotalWeeks     int          `json:"total_weeks"`
	CompletedWeeks int          `json:"completed_weeks"`
	LevelFrom      string       `json:"level_from"`
	LevelTo        string       `json:"level_to"`
	Message        string       `json:"message"`
	PlanIsNew      bool         `json:"plan_is_new"`
	TopicsByWeek   []WeekTopics `json:"topics_by_week"`
}

const (
	MinCurriculumWeeks     = 4
	MaxCurriculumWeeks     = 52
	DefaultCurriculumWeeks = 24
)
