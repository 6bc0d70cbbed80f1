package pipeline

import (
	"context"
	"fmt"
	"time"

	"studybuddy/internal/chunker"
	"studybuddy/internal/models"
	"studybuddy/internal/topics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the persistence boundary the pipeline drives.
type Store interface {
	ParsedDocuments(ctx context.Context) ([]models.Document, error)
	AllTopics(ctx context.Context) ([]models.Topic, error)
	HasChunks(ctx context.Context, documentID string) (bool, error)
	CommitDocument(ctx context.Context, chunks []models.Chunk, associations []models.ChunkTopic) error
}

// Embedder embeds segment and topic texts.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Status is the outcome of one document's processing.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// DocumentResult reports what happened to one document. Err is set only for
// StatusFailed; failed documents were rolled back and stay eligible for retry
// on the next run.
type DocumentResult struct {
	DocumentID   string
	Status       Status
	Chunks       int
	Associations int
	Err          error
}

// Summary aggregates a whole run.
type Summary struct {
	Processed    int
	Skipped      int
	Failed       int
	Chunks       int
	Associations int
}

// Pipeline chunks parsed documents and maps eligible segments to curriculum
// topics, one transaction per document.
type Pipeline struct {
	store      Store
	embedder   Embedder
	chunker    *chunker.Chunker
	thresholds topics.Thresholds
	log        *zap.SugaredLogger
}

// New creates a Pipeline.
func New(store Store, embedder Embedder, ch *chunker.Chunker, th topics.Thresholds, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		store:      store,
		embedder:   embedder,
		chunker:    ch,
		thresholds: th,
		log:        log,
	}
}

// Run builds the topic index, then processes every parsed document in
// sequence. A document failure rolls that document back and processing
// continues; re-running the pipeline retries it, while already-committed
// documents are skipped by the chunk-existence check.
func (p *Pipeline) Run(ctx context.Context) (Summary, []DocumentResult, error) {
	allTopics, err := p.store.AllTopics(ctx)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("failed to load topics: %w", err)
	}

	index, err := topics.BuildIndex(ctx, p.embedder, allTopics)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("failed to build topic index: %w", err)
	}
	p.log.Infow("topic index built", "topics", len(allTopics), "courses", index.Courses())

	docs, err := p.store.ParsedDocuments(ctx)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("failed to load documents: %w", err)
	}
	p.log.Infow("documents to chunk", "count", len(docs))

	var summary Summary
	results := make([]DocumentResult, 0, len(docs))
	for _, doc := range docs {
		res := p.processDocument(ctx, doc, index)
		results = append(results, res)

		switch res.Status {
		case StatusProcessed:
			summary.Processed++
			summary.Chunks += res.Chunks
			summary.Associations += res.Associations
			p.log.Infow("document chunked",
				"document", doc.ID, "chunks", res.Chunks, "associations", res.Associations)
		case StatusSkipped:
			summary.Skipped++
			p.log.Debugw("chunks already exist, skipping", "document", doc.ID)
		case StatusFailed:
			summary.Failed++
			p.log.Errorw("document failed, will retry next run", "document", doc.ID, "error", res.Err)
		}
	}

	return summary, results, nil
}

// processDocument handles one document end to end. Embedding failures skip
// that segment's associations but never block persisting the segments
// themselves; store failures fail the whole document.
func (p *Pipeline) processDocument(ctx context.Context, doc models.Document, index *topics.Index) DocumentResult {
	exists, err := p.store.HasChunks(ctx, doc.ID)
	if err != nil {
		return DocumentResult{DocumentID: doc.ID, Status: StatusFailed, Err: err}
	}
	if exists {
		return DocumentResult{DocumentID: doc.ID, Status: StatusSkipped}
	}

	segments := p.chunker.Split(doc.RawText)
	if len(segments) == 0 {
		p.log.Infow("no chunkable content", "document", doc.ID)
		return DocumentResult{DocumentID: doc.ID, Status: StatusProcessed}
	}

	now := time.Now().UTC()
	chunks := make([]models.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = models.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			CourseID:   doc.CourseID,
			Index:      seg.Index,
			Text:       seg.Text,
			TokenCount: seg.TokenCount,
			CreatedAt:  now,
		}
	}

	var associations []models.ChunkTopic
	if doc.Role.Eligible() && index.HasCourse(doc.CourseID) {
		for _, chunk := range chunks {
			vec, err := p.embedder.EmbedText(ctx, chunk.Text)
			if err != nil {
				p.log.Warnw("embedding failed, chunk kept without associations",
					"document", doc.ID, "chunk_index", chunk.Index, "error", err)
				continue
			}

			matches := index.Match(doc.CourseID, topics.Normalize(vec), p.thresholds)
			for _, m := range matches {
				associations = append(associations, models.ChunkTopic{
					ID:         uuid.NewString(),
					ChunkID:    chunk.ID,
					TopicID:    m.TopicID,
					Similarity: m.Similarity,
					Rank:       m.Rank,
					Inferred:   true,
					CreatedAt:  now,
				})
			}
		}
	}

	if err := p.store.CommitDocument(ctx, chunks, associations); err != nil {
		return DocumentResult{DocumentID: doc.ID, Status: StatusFailed, Err: err}
	}

	return DocumentResult{
		DocumentID:   doc.ID,
		Status:       StatusProcessed,
		Chunks:       len(chunks),
		Associations: len(associations),
	}
}
