package generate

import (
	"fmt"

	"langtutor/models"
)

// fallbackTopicCycle is the deterministic backup plan used when the model is
// unavailable or returns an unusable completion. The twelve entries rotate to
// fill any requested week count.
var fallbackTopicCycle = [][]string{
	{"Greetings", "Introductions"},
	{"Numbers", "Time", "Days of the Week"},
	{"Family", "Describing People"},
	{"Food", "Restaurant", "Shopping"},
	{"City", "Directions", "Transport"},
	{"Work", "Professions", "Daily Routine"},
	{"Travel", "Hotel", "Airport"},
	{"Past Tense", "Regular Verbs"},
	{"Future Tense", "Plans"},
	{"Habits", "Frequency Adverbs"},
	{"Comparisons", "Adjectives"},
	{"Conditional Sentences"},
}

// fallbackCurriculum builds the canned plan. It carries no timestamps so
// identical inputs produce identical output byte for byte.
func fallbackCurriculum(language, levelFrom, levelTo string, totalWeeks int) *models.Curriculum {
	topicsByWeek := make([]models.WeekTopics, totalWeeks)
	for i := 0; i < totalWeeks; i++ {
		topicsByWeek[i] = models.WeekTopics{
			Week:   i + 1,
			Topics: fallbackTopicCycle[i%len(fallbackTopicCycle)],
		}
	}

	return &models.Curriculum{
		TotalWeeks:   totalWeeks,
		Language:     language,
		LevelFrom:    levelFrom,
		LevelTo:      levelTo,
		TopicsByWeek: topicsByWeek,
	}
}

// terminalWeekTopics labels the placeholder week returned once the plan is
// exhausted.
var terminalWeekTopics = []string{"Final Project", "Free Communication"}

// nextWeekFor resolves the lesson pointer: always completed + 1. A plan with
// no matching entry yields the terminal placeholder week.
func nextWeekFor(curriculum *models.Curriculum) models.NextWeek {
	nextNumber := curriculum.CompletedWeeks + 1

	for _, week := range curriculum.TopicsByWeek {
		if week.Week == nextNumber {
			return models.NextWeek{
				Week:   nextNumber,
				Topics: week.Topics,
				IsLast: nextNumber >= curriculum.TotalWeeks,
			}
		}
	}

	return models.NextWeek{
		Week:   nextNumber,
		Topics: terminalWeekTopics,
		IsLast: true,
	}
}

// Canned values for mock mode. Each is deterministic for its parameters so
// mock-mode behavior is testable byte for byte.

func mockTheoryLesson(topic, level, language string) *models.TheoryLesson {
	return &models.TheoryLesson{
		Title:   fmt.Sprintf("Introduction to %s", topic),
		Topic:   topic,
		Content: fmt.Sprintf("# %s\n\nThis %s lesson covers the essentials of %s in %s.\n\n- Core vocabulary\n- Usage patterns\n- Common pitfalls", topic, level, topic, language),
		KeyPoints: []string{
			fmt.Sprintf("Know the core vocabulary for %s", topic),
			"Practice with short example sentences",
			"Review the common pitfalls",
		},
		GeneratedBy: "mock",
	}
}

func mockQuiz(topic string, level, numQuestions int) *models.Quiz {
	questions := make([]models.QuizQuestion, numQuestions)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			QuestionID:    i + 1,
			Type:          "multiple_choice",
			Text:          fmt.Sprintf("Sample question %d about %s: which option is correct?", i+1, topic),
			Options:       []string{"A) option one", "B) option two", "C) option three"},
			CorrectAnswer: "A",
		}
	}

	return &models.Quiz{
		QuizID:          quizID(topic),
		Topic:           topic,
		DifficultyLevel: level,
		Questions:       questions,
	}
}

func mockExercise(topic string, number int) *models.Exercise {
	return &models.Exercise{
		QuestionID:    number,
		Type:          "vocabulary",
		Task:          fmt.Sprintf("Match the %s vocabulary item %d to its meaning.", topic, number),
		Instructions:  "Pick the best match.",
		Options:       []string{"meaning one", "meaning two", "meaning three"},
		CorrectAnswer: "meaning one",
		Explanation:   "Canned exercise produced without a model.",
	}
}

func mockDialogue(topic, language string) *models.Dialogue {
	return &models.Dialogue{
		Title: fmt.Sprintf("Talking About %s", topic),
		Topic: topic,
		Lines: []models.DialogueLine{
			{Speaker: "A", Text: fmt.Sprintf("Shall we practice %s today?", topic)},
			{Speaker: "B", Text: "Yes, let's start with the basics."},
			{Speaker: "A", Text: fmt.Sprintf("Great. How do you say it in %s?", language)},
			{Speaker: "B", Text: "Like this. Now you try."},
		},
		Vocabulary: []string{"practice", "basics"},
	}
}

func mockChatEvaluation(studentID string) *models.ChatEvaluation {
	return &models.ChatEvaluation{
		StudentID:         studentID,
		OverallScore:      70,
		Feedback:          "Steady progress. Keep practicing full sentences and review verb tenses.",
		Errors:            []models.ErrorRecord{},
		FollowUpQuestions: []string{"Can you describe your day using past tense?"},
	}
}

func mockChatAnswer(question string) string {
	return fmt.Sprintf("Good question! Regarding %q: practice it in short sentences first, then build up. (Generated without a model.)", question)
}
