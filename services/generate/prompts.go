package generate

import (
	"fmt"
	"strings"

	"langtutor/models"

	"github.com/samber/lo"
)

// Prompt templates are deterministic: the same parameters always render the
// same text, so everything up to the model call is reproducible in tests.
// Each template ends with a literal example of the expected JSON shape and an
// instruction to return nothing else.
const (
	CURRICULUM_PROMPT = `You are the world's best language curriculum designer.

Student level: %s
Target level: %s
Goal: %s
Language: %s

Create a %d-week course plan. Write names of topics only in English. 1-2 topics per week.

ANSWER WITH NOTHING BUT THIS EXACT JSON - NO extra text, NO markdown, NO explanations:

{
  "total_weeks": %d,
  "language": "%s",
  "level_from": "%s",
  "level_to": "%s",
  "topics_by_week": [
    {"week": 1, "topics": ["Greetings & Introductions", "Alphabet & Pronunciation"]},
    {"week": 2, "topics": ["Numbers 1-100", "Telling Time"]}
  ]
}

The example topics above are just an example; choose topics matching the level and goal, and continue until week %d.`

	THEORY_PROMPT = `You are an expert language teacher creating clear, engaging educational content.

Task: create a theoretical lesson for a student in a language learning app.

Context:
- Target Language: %s
- Student Level: %s (CEFR)
- Current Week: %d
- Main Topic: %s
%s
Requirements:
1. Title: catchy and relevant.
2. Content: markdown formatting, clear explanation with examples in %s, concise but complete for the level.
3. Key takeaways: 2-4 crucial points to remember.

Return strictly valid JSON in this exact shape, with no other text:

{
  "title": "Lesson Title",
  "topic": "%s",
  "content": "Markdown string here...",
  "key_points": ["Point 1", "Point 2"]
}`

	THEORY_CONTEXT_BLOCK = `
Reference material (use it to verify facts and draw examples, but structure a clean lesson):
---
%s
---
`

	QUIZ_PROMPT = `You are an expert language test creator.
Generate a quiz with %d questions for a language learner.

Student profile:
- Language: %s
- CEFR level: %s
- Topic: %s

Instructions:
- Vary the question types: multiple_choice, fill_in_the_blank, short_answer.
- Keep questions relevant to the topic and appropriate for the level.
- Multiple-choice options must include plausible distractors.

Return a single JSON object in this exact shape, with no other text:

{
  "topic": "%s",
  "questions": [
    {"question_id": 1, "type": "multiple_choice", "text": "Which sentence is correct?", "options": ["A) He go.", "B) He goes."], "correct_answer": "B"},
    {"question_id": 2, "type": "fill_in_the_blank", "text": "She is interested ___ languages.", "correct_answer": "in"}
  ]
}`

	EXERCISE_PROMPT = `You are a language exercise designer.
Create ONE practice exercise.

Parameters:
- Language: %s
- CEFR level: %s
- Topic: %s
- Exercise number: %d

The "type" field must be one of: vocabulary, grammar, dialogue, translation, listening, pronunciation.

Return a single JSON object in this exact shape, with no other text:

{
  "question_id": %d,
  "type": "grammar",
  "task": "Fill in the blank with the correct verb form.",
  "instructions": "Use the present simple tense.",
  "options": ["go", "goes", "going"],
  "correct_answer": "goes",
  "explanation": "Third person singular takes -s."
}`

	DIALOGUE_PROMPT = `You are a language teacher writing practice dialogues.
Write a short, natural dialogue between two speakers.

Parameters:
- Language: %s
- CEFR level: %s
- Topic: %s
- Length: 6-10 lines

%s
Return a single JSON object in this exact shape, with no other text:

{
  "title": "At the Restaurant",
  "topic": "%s",
  "lines": [
    {"speaker": "Waiter", "text": "Good evening!", "translation": ""},
    {"speaker": "Anna", "text": "A table for two, please.", "translation": ""}
  ],
  "vocabulary": ["table", "menu"]
}`

	CHAT_EVALUATION_PROMPT = `You are a language tutor reviewing a student's recent practice conversation.

Student level: %s
Target language: %s

Conversation transcript (most recent first):
%s

Evaluate the student's language use across the transcript. Score from 0 to 100.
List concrete errors with corrections. Suggest follow-up questions for practice.

Return a single JSON object in this exact shape, with no other text:

{
  "overall_score": 72.5,
  "feedback": "Encouraging summary of strengths and weaknesses.",
  "errors": [
    {"error_type": "grammar", "original_text": "I go yesterday", "corrected_text": "I went yesterday", "explanation": "Past tense needed."}
  ],
  "follow_up_questions": ["What did you do last weekend?"]
}

Allowed error_type values: grammar, vocabulary, pronunciation, spelling.`

	TUTOR_CHAT_PROMPT = `You are a friendly %s tutor for a %s-level student named %s.
Their stated goal: %s

Answer the student's question clearly and briefly, with examples in %s where helpful.
Respond with plain text only, no JSON, no markdown headers.

Student question: %s`
)

func buildCurriculumPrompt(language, levelFrom, levelTo, goals string, totalWeeks int) string {
	if goals == "" {
		goals = "General fluency"
	}
	return fmt.Sprintf(CURRICULUM_PROMPT,
		levelFrom, levelTo, goals, language,
		totalWeeks, totalWeeks, language, levelFrom, levelTo, totalWeeks)
}

func buildTheoryPrompt(topic string, week int, level, language string, context []models.ScoredMaterial) string {
	contextBlock := ""
	if len(context) > 0 {
		passages := lo.Map(context, func(material models.ScoredMaterial, _ int) string {
			return material.Content
		})
		contextBlock = fmt.Sprintf(THEORY_CONTEXT_BLOCK, strings.Join(passages, "\n---\n"))
	}

	return fmt.Sprintf(THEORY_PROMPT, language, level, week, topic, contextBlock, language, topic)
}

func buildQuizPrompt(language, level, topic string, numQuestions int) string {
	return fmt.Sprintf(QUIZ_PROMPT, numQuestions, language, level, topic, topic)
}

func buildExercisePrompt(language, level, topic string, number int) string {
	return fmt.Sprintf(EXERCISE_PROMPT, language, level, topic, number, number)
}

func buildDialoguePrompt(language, level, topic string, context []models.ScoredMaterial) string {
	contextBlock := ""
	if len(context) > 0 {
		contextBlock = fmt.Sprintf(THEORY_CONTEXT_BLOCK, context[0].Content)
	}
	return fmt.Sprintf(DIALOGUE_PROMPT, language, level, topic, contextBlock, topic)
}

func buildChatEvaluationPrompt(level, language string, interactions []*models.ChatInteraction) string {
	transcript := lo.Map(interactions, func(interaction *models.ChatInteraction, _ int) string {
		return fmt.Sprintf("Student: %s\nTutor: %s", interaction.Question, interaction.Answer)
	})
	return fmt.Sprintf(CHAT_EVALUATION_PROMPT, level, language, strings.Join(transcript, "\n"))
}

func buildTutorChatPrompt(profile *models.StudentProfile, question string) string {
	goals := profile.Goals
	if goals == "" {
		goals = "general fluency"
	}
	level := models.CEFRForLevel(profile.CurrentLevel)
	return fmt.Sprintf(TUTOR_CHAT_PROMPT,
		profile.TargetLanguage, level, profile.Name, goals, profile.TargetLanguage, question)
}
