package models

import "time"

// Material is one passage in the teaching-materials corpus. Rows live in
// Postgres and are mirrored into the vector index; the lexical searcher reads
// the rows directly while the embedding searcher queries the index.
type Material struct {
	ID        string    `json:"id" db:"id"`
	Topic     string    `json:"topic" db:"topic"`
	Level     string    `json:"level" db:"level"`
	Language  string    `json:"language" db:"language"`
	Content   string    `json:"content" db:"content"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ScoredMaterial carries a best-effort similarity score in [0,1], derived as
// 1 - distance from the underlying nearest-neighbor metric. Higher is better;
// it is not a calibrated probability.
type ScoredMaterial struct {
	Material
	Relevance float64 `json:"relevance"`
}
