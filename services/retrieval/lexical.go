package retrieval

import (
	"slices"
	"strings"

	"langtutor/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// searchLexical is the store's own text-query path: no embedding service
// involved. Materials are ranked by the fraction of query terms that fuzzily
// match the passage, so relevance stays in [0,1] with the same ranking
// direction as embedding mode.
func (s *Service) searchLexical(query string, filters Filters, limit int) ([]models.ScoredMaterial, error) {
	materials, err := s.materials.GetMaterialsByFilter(filters.Topic, filters.Level)
	if err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []models.ScoredMaterial{}, nil
	}

	scored := make([]models.ScoredMaterial, 0, len(materials))
	for _, material := range materials {
		relevance := lexicalRelevance(terms, material.Content)
		if relevance <= 0 {
			continue
		}
		scored = append(scored, models.ScoredMaterial{
			Material:  *material,
			Relevance: relevance,
		})
	}

	slices.SortFunc(scored, func(a, b models.ScoredMaterial) int {
		if a.Relevance > b.Relevance {
			return -1
		}
		if a.Relevance < b.Relevance {
			return 1
		}
		return 0
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

// lexicalRelevance is the matched fraction of query terms: distance is the
// unmatched fraction, relevance is 1 - distance.
func lexicalRelevance(terms []string, content string) float64 {
	words := cleanWords(content)

	matched := 0
	for _, term := range terms {
		if len(fuzzy.FindNormalizedFold(term, words)) > 0 {
			matched++
		}
	}

	return float64(matched) / float64(len(terms))
}

func cleanWords(content string) []string {
	fields := strings.Fields(strings.ToLower(content))

	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.Trim(field, ".,!?;:()[]{}\"'")
		if len(word) > 0 {
			words = append(words, word)
		}
	}
	return words
}
