package retrieval

import (
	"context"
	"fmt"
	"log"

	"langtutor/models"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

const indexNamespace = "langtutor-materials"

// PineconeIndex is the embedding-mode backend: query text goes through the
// embedding service before the nearest-neighbor lookup.
type PineconeIndex struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewPineconeIndex(apiKey, openaiAPIKey, indexName string) (*PineconeIndex, error) {
	log.Printf("[INFO] Initializing Pinecone index %s", indexName)

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &PineconeIndex{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}, nil
}

func (p *PineconeIndex) connect(ctx context.Context) (*pinecone.IndexConnection, error) {
	idxDesc, err := p.client.DescribeIndex(ctx, p.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := p.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: indexNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return idxConn, nil
}

func (p *PineconeIndex) Query(ctx context.Context, query string, filters Filters, limit int) ([]models.ScoredMaterial, error) {
	queryEmbeddings, err := p.embedder.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	idxConn, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}

	metadataFilter, err := buildMetadataFilter(filters)
	if err != nil {
		return nil, err
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryEmbeddings[0],
		TopK:            uint32(limit),
		MetadataFilter:  metadataFilter,
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	materials := make([]models.ScoredMaterial, 0, len(result.Matches))
	for _, match := range result.Matches {
		if match.Vector.Metadata == nil {
			continue
		}
		metadata := match.Vector.Metadata.AsMap()

		material := models.ScoredMaterial{
			// The index uses cosine distance; pinecone reports the similarity
			// score directly, which equals 1 - distance.
			Relevance: clampUnit(float64(match.Score)),
		}
		material.ID = match.Vector.Id
		material.Topic, _ = metadata["topic"].(string)
		material.Level, _ = metadata["level"].(string)
		material.Language, _ = metadata["language"].(string)
		material.Content, _ = metadata["content"].(string)
		material.Source, _ = metadata["source"].(string)

		materials = append(materials, material)
	}

	return materials, nil
}

func (p *PineconeIndex) Upsert(ctx context.Context, material *models.Material) error {
	embedded, err := p.embedder.EmbedDocuments(ctx, []string{material.Content})
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	metadata := map[string]any{
		"topic":    material.Topic,
		"level":    material.Level,
		"language": material.Language,
		"content":  material.Content,
		"source":   material.Source,
	}

	metadataStruct, err := structpb.NewStruct(metadata)
	if err != nil {
		return fmt.Errorf("failed to create metadata struct for %s: %w", material.ID, err)
	}

	idxConn, err := p.connect(ctx)
	if err != nil {
		return err
	}

	vector := &pinecone.Vector{
		Id:       material.ID,
		Values:   &embedded[0],
		Metadata: metadataStruct,
	}

	if _, err := idxConn.UpsertVectors(ctx, []*pinecone.Vector{vector}); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	return nil
}

func buildMetadataFilter(filters Filters) (*structpb.Struct, error) {
	conditions := map[string]any{}
	if filters.Topic != "" {
		conditions["topic"] = filters.Topic
	}
	if filters.Level != "" {
		conditions["level"] = filters.Level
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	metadataFilter, err := structpb.NewStruct(conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata filter: %w", err)
	}
	return metadataFilter, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
