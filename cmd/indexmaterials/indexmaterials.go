package main

import (
	"context"
	"log"

	"langtutor/config"
	"langtutor/db"
	"langtutor/models"
	"langtutor/services/retrieval"

	"github.com/google/uuid"
)

type seedMaterial struct {
	Topic    string
	Level    string
	Language string
	Content  string
}

// seedMaterials is the starter corpus for a fresh install. Generated theory
// lessons are archived alongside these over time.
var seedMaterials = []seedMaterial{
	{
		Topic:    "Present Simple",
		Level:    "A1",
		Language: "English",
		Content: `# Present Simple Tense

The Present Simple is the most basic tense in English. We use it for:
1. **Habits and Routines**: "I wake up at 7 AM."
2. **General Truths**: "The sun rises in the east."
3. **Permanent Situations**: "She lives in New York."

**Structure:**
- Positive: Subject + Verb (s/es for he/she/it)
  - "I play tennis."
  - "He plays tennis."
- Negative: Subject + do/does not + Verb
  - "I do not play."
  - "He does not play."
- Question: Do/Does + Subject + Verb?
  - "Do you play?"
  - "Does he play?"`,
	},
	{
		Topic:    "Past Simple",
		Level:    "A2",
		Language: "English",
		Content: `# Past Simple Tense

We use the Past Simple for finished actions in the past.

**Regular Verbs**: Add -ed
- Walk -> Walked
- Play -> Played

**Irregular Verbs** (Must be memorized):
- Go -> Went
- See -> Saw
- Buy -> Bought

**Time Markers**: yesterday, last week, in 2010, two days ago.

Example: "I went to the park yesterday."`,
	},
	{
		Topic:    "Greetings and Introductions",
		Level:    "A1",
		Language: "English",
		Content: `# Greetings and Introductions

**Formal Greetings:**
- "Good morning / afternoon / evening."
- "How do you do?" (Very formal)

**Informal Greetings:**
- "Hi!", "Hello!"
- "How are you?" -> "I'm fine, thanks. And you?"
- "What's up?" (Very informal)

**Introductions:**
- "My name is..."
- "Nice to meet you."`,
	},
	{
		Topic:    "Present Continuous",
		Level:    "A1",
		Language: "English",
		Content: `# Present Continuous

We use Present Continuous for actions happening **right now**.

**Structure**: Subject + am/is/are + Verb-ing

Examples:
- "I am reading a book now."
- "She is cooking dinner."
- "They are playing football."

**Spelling Rules**:
- run -> running (double consonant)
- write -> writing (drop 'e')`,
	},
}

func main() {
	log.Printf("[INFO] Starting material seeding process")

	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("[ERROR] DB_URL environment variable is required")
	}

	materialRepo, err := db.NewPostgresMaterialRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize material database: %v", err)
	}
	defer materialRepo.Close()

	var index *retrieval.PineconeIndex
	if cfg.RetrievalMode == retrieval.ModeEmbedding {
		if cfg.PineconeAPIKey == "" {
			log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required in embedding mode")
		}
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required in embedding mode")
		}
		index, err = retrieval.NewPineconeIndex(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("[ERROR] Failed to initialize vector index: %v", err)
		}
	}

	searcher, err := retrieval.NewService(cfg.RetrievalMode, materialRepo, index)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize retrieval service: %v", err)
	}

	ctx := context.Background()

	added := 0
	for _, seed := range seedMaterials {
		material := &models.Material{
			ID:       uuid.NewString(),
			Topic:    seed.Topic,
			Level:    seed.Level,
			Language: seed.Language,
			Content:  seed.Content,
			Source:   "seed",
		}

		if err := searcher.AddMaterial(ctx, material); err != nil {
			log.Printf("[ERROR] Failed to add material %q: %v", seed.Topic, err)
			continue
		}
		log.Printf("[INFO] Added material: %s (%s)", seed.Topic, seed.Level)
		added++
	}

	total, err := materialRepo.CountMaterials()
	if err != nil {
		log.Printf("[WARN] Could not count materials: %v", err)
	}

	log.Printf("[INFO] Seeding finished: %d/%d added, %d total in store", added, len(seedMaterials), total)
}
