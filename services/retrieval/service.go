package retrieval

import (
	"context"
	"fmt"
	"log"

	"langtutor/db"
	"langtutor/models"
)

// Filters narrow a materials search. Empty fields match everything.
type Filters struct {
	Topic string
	Level string
}

// Searcher is the materials-corpus contract consumers depend on: ranked
// passages with relevance in [0,1], higher meaning a better match, and
// archival of new passages. An empty search result is a valid outcome,
// never an error.
type Searcher interface {
	Search(ctx context.Context, query string, filters Filters, limit int) ([]models.ScoredMaterial, error)
	AddMaterial(ctx context.Context, material *models.Material) error
}

var _ Searcher = (*Service)(nil)

const (
	ModeEmbedding = "embedding"
	ModeLexical   = "lexical"
)

// Service fronts the materials corpus. Rows always live in Postgres; in
// embedding mode they are additionally mirrored into the vector index, which
// then serves the queries. Search failures are absorbed into empty results at
// this boundary so generation can proceed without grounding.
type Service struct {
	mode      string
	materials db.MaterialRepository
	index     *PineconeIndex
}

func NewService(mode string, materials db.MaterialRepository, index *PineconeIndex) (*Service, error) {
	switch mode {
	case ModeEmbedding:
		if index == nil {
			return nil, fmt.Errorf("embedding mode requires a vector index")
		}
	case ModeLexical:
	default:
		return nil, fmt.Errorf("unknown retrieval mode: %s", mode)
	}

	log.Printf("[INFO] Retrieval service initialized in %s mode", mode)
	return &Service{mode: mode, materials: materials, index: index}, nil
}

func (s *Service) Search(ctx context.Context, query string, filters Filters, limit int) ([]models.ScoredMaterial, error) {
	var (
		results []models.ScoredMaterial
		err     error
	)

	if s.mode == ModeEmbedding {
		results, err = s.index.Query(ctx, query, filters, limit)
	} else {
		results, err = s.searchLexical(query, filters, limit)
	}

	if err != nil {
		log.Printf("[ERROR] Materials search failed for query %q: %v", query, err)
		return []models.ScoredMaterial{}, nil
	}

	log.Printf("[INFO] Found %d materials for query %q", len(results), query)
	return results, nil
}

// AddMaterial archives a passage into the corpus: the Postgres row always,
// the vector index additionally when embedding mode is active.
func (s *Service) AddMaterial(ctx context.Context, material *models.Material) error {
	if err := s.materials.AddMaterial(material); err != nil {
		return fmt.Errorf("failed to store material row: %w", err)
	}

	if s.mode == ModeEmbedding {
		if err := s.index.Upsert(ctx, material); err != nil {
			return fmt.Errorf("failed to index material: %w", err)
		}
	}

	log.Printf("[INFO] Material archived: %s (%s)", material.ID, material.Topic)
	return nil
}
