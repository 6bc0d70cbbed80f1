package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studybuddy/internal/chunker"
	"studybuddy/internal/models"
	"studybuddy/internal/topics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// fakeStore implements Store in memory with the same per-document atomicity
// the Postgres store provides.
type fakeStore struct {
	docs      []models.Document
	topics    []models.Topic
	chunks    map[string][]models.Chunk // by document ID
	assocs    []models.ChunkTopic
	commitErr map[string]error // by document ID
	hasErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chunks:    make(map[string][]models.Chunk),
		commitErr: make(map[string]error),
	}
}

func (f *fakeStore) ParsedDocuments(ctx context.Context) ([]models.Document, error) {
	return f.docs, nil
}

func (f *fakeStore) AllTopics(ctx context.Context) ([]models.Topic, error) {
	return f.topics, nil
}

func (f *fakeStore) HasChunks(ctx context.Context, documentID string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return len(f.chunks[documentID]) > 0, nil
}

func (f *fakeStore) CommitDocument(ctx context.Context, chunks []models.Chunk, associations []models.ChunkTopic) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := f.commitErr[chunks[0].DocumentID]; err != nil {
		return err
	}
	f.chunks[chunks[0].DocumentID] = append(f.chunks[chunks[0].DocumentID], chunks...)
	f.assocs = append(f.assocs, associations...)
	return nil
}

// fakeVectorEmbedder returns canned vectors keyed by text.
type fakeVectorEmbedder struct {
	vectors    map[string][]float64
	failOn     map[string]error
	embedCalls []string
}

func (f *fakeVectorEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	f.embedCalls = append(f.embedCalls, text)
	if err := f.failOn[text]; err != nil {
		return nil, err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float64{0, 0}, nil
}

func (f *fakeVectorEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := f.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func newPipeline(store Store, embedder Embedder) *Pipeline {
	ch := chunker.New(wordCounter{}, 500, 650)
	return New(store, embedder, ch, topics.DefaultThresholds(), zap.NewNop().Sugar())
}

func TestRunCommitsChunksAndAssociations(t *testing.T) {
	store := newFakeStore()
	store.topics = []models.Topic{
		{ID: "t-graphs", CourseID: "dsa", Label: "Unit 1 - Graphs"},
		{ID: "t-trees", CourseID: "dsa", Label: "Unit 1 - Trees"},
	}
	store.docs = []models.Document{{
		ID:       "doc1",
		CourseID: "dsa",
		Role:     models.RoleStudyMaterial,
		RawText:  "all about graph traversal",
	}}

	embedder := &fakeVectorEmbedder{vectors: map[string][]float64{
		"Unit 1 - Graphs":           {1, 0},
		"Unit 1 - Trees":            {0, 1},
		"all about graph traversal": {0.9, 0.1},
	}}

	summary, results, err := newPipeline(store, embedder).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Chunks)
	assert.Equal(t, 1, summary.Associations)
	require.Len(t, results, 1)
	assert.Equal(t, StatusProcessed, results[0].Status)

	chunks := store.chunks["doc1"]
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.NotEmpty(t, chunks[0].ID)
	assert.Equal(t, "dsa", chunks[0].CourseID)
	assert.Equal(t, 4, chunks[0].TokenCount)

	require.Len(t, store.assocs, 1)
	assoc := store.assocs[0]
	assert.Equal(t, chunks[0].ID, assoc.ChunkID)
	assert.Equal(t, "t-graphs", assoc.TopicID)
	assert.Equal(t, 1, assoc.Rank)
	assert.True(t, assoc.Inferred)
	assert.Greater(t, assoc.Similarity, 0.78)
}

func TestRunSecondRunIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.docs = []models.Document{{
		ID:       "doc1",
		CourseID: "dsa",
		Role:     models.RoleStudyMaterial,
		RawText:  "some study notes here",
	}}
	embedder := &fakeVectorEmbedder{}
	p := newPipeline(store, embedder)

	first, _, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Processed)
	committed := store.chunks["doc1"]

	second, results, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.Equal(t, committed, store.chunks["doc1"])
}

func TestRunMarksDistributionNeverAssociated(t *testing.T) {
	store := newFakeStore()
	store.topics = []models.Topic{
		{ID: "t1", CourseID: "dsa", Label: "Unit 1 - Graphs"},
	}
	store.docs = []models.Document{{
		ID:       "doc1",
		CourseID: "dsa",
		Role:     models.RoleMarksDistribution,
		RawText:  "internal exam carries forty marks",
	}}
	embedder := &fakeVectorEmbedder{vectors: map[string][]float64{
		// the chunk text would match perfectly if the role were eligible
		"Unit 1 - Graphs":                   {1, 0},
		"internal exam carries forty marks": {1, 0},
	}}

	summary, _, err := newPipeline(store, embedder).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Chunks)
	assert.Zero(t, summary.Associations)
	assert.Empty(t, store.assocs)
	// Only the topic label was embedded, never the chunk
	assert.Equal(t, []string{"Unit 1 - Graphs"}, embedder.embedCalls)
}

func TestRunCourseWithoutTopicsSkipsMatching(t *testing.T) {
	store := newFakeStore()
	store.docs = []models.Document{{
		ID:       "doc1",
		CourseID: "maths",
		Role:     models.RoleUnknown,
		RawText:  "limits and continuity",
	}}
	embedder := &fakeVectorEmbedder{}

	summary, _, err := newPipeline(store, embedder).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Chunks)
	assert.Zero(t, summary.Associations)
	assert.Empty(t, embedder.embedCalls)
}

func TestRunEmbedFailureKeepsChunksWithoutAssociations(t *testing.T) {
	store := newFakeStore()
	store.topics = []models.Topic{
		{ID: "t1", CourseID: "dsa", Label: "Unit 1 - Graphs"},
	}
	store.docs = []models.Document{{
		ID:       "doc1",
		CourseID: "dsa",
		Role:     models.RoleStudyMaterial,
		RawText:  "graph algorithms overview",
	}}
	embedder := &fakeVectorEmbedder{
		vectors: map[string][]float64{"Unit 1 - Graphs": {1, 0}},
		failOn:  map[string]error{"graph algorithms overview": errors.New("embedding timeout")},
	}

	summary, results, err := newPipeline(store, embedder).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusProcessed, results[0].Status)
	assert.Equal(t, 1, summary.Chunks)
	assert.Zero(t, summary.Associations)
	require.Len(t, store.chunks["doc1"], 1)
}

func TestRunCommitFailureContinuesWithNextDocument(t *testing.T) {
	store := newFakeStore()
	store.docs = []models.Document{
		{ID: "doc1", CourseID: "dsa", Role: models.RoleUnknown, RawText: "first document text"},
		{ID: "doc2", CourseID: "dsa", Role: models.RoleUnknown, RawText: "second document text"},
	}
	store.commitErr["doc1"] = errors.New("connection reset")
	embedder := &fakeVectorEmbedder{}

	summary, results, err := newPipeline(store, embedder).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)
	assert.Equal(t, StatusProcessed, results[1].Status)

	// Failed document left uncommitted, so the next run retries it
	assert.Empty(t, store.chunks["doc1"])
	assert.Len(t, store.chunks["doc2"], 1)
}

func TestRunDocumentWithoutContent(t *testing.T) {
	store := newFakeStore()
	store.docs = []models.Document{{
		ID:       "doc1",
		CourseID: "dsa",
		Role:     models.RoleStudyMaterial,
		RawText:  "\n \n",
	}}
	embedder := &fakeVectorEmbedder{}

	summary, results, err := newPipeline(store, embedder).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Zero(t, summary.Chunks)
	assert.Equal(t, StatusProcessed, results[0].Status)
	assert.Empty(t, store.chunks["doc1"])
}
