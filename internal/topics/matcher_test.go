package topics

import (
	"context"
	"testing"

	"studybuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoTopicIndex builds an index where topic "first" scores the query's first
// component and topic "second" the second, so tests can dial in exact
// similarities.
func twoTopicIndex(t *testing.T) *Index {
	t.Helper()
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"first":  {1, 0},
		"second": {0, 1},
	}}
	ix, err := BuildIndex(context.Background(), embedder, []models.Topic{
		{ID: "first", CourseID: "c1", Label: "first"},
		{ID: "second", CourseID: "c1", Label: "second"},
	})
	require.NoError(t, err)
	return ix
}

func TestMatchAdmitsCloseConfidentSecond(t *testing.T) {
	ix := twoTopicIndex(t)

	// gap 0.04 <= delta, second 0.76 >= 0.72
	matches := ix.Match("c1", []float64{0.80, 0.76}, DefaultThresholds())

	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].TopicID)
	assert.Equal(t, 1, matches[0].Rank)
	assert.InDelta(t, 0.80, matches[0].Similarity, 1e-9)
	assert.Equal(t, "second", matches[1].TopicID)
	assert.Equal(t, 2, matches[1].Rank)
	assert.InDelta(t, 0.76, matches[1].Similarity, 1e-9)
	assert.GreaterOrEqual(t, matches[0].Similarity, matches[1].Similarity)
}

func TestMatchRejectsSecondAcrossWideGap(t *testing.T) {
	ix := twoTopicIndex(t)

	// gap 0.10 > delta 0.05; second place alone is not enough
	matches := ix.Match("c1", []float64{0.80, 0.70}, DefaultThresholds())

	require.Len(t, matches, 1)
	assert.Equal(t, "first", matches[0].TopicID)
	assert.Equal(t, 1, matches[0].Rank)
}

func TestMatchRejectsUnconfidentSecond(t *testing.T) {
	ix := twoTopicIndex(t)

	// gap fine but second below the top-2 threshold: 0.795/0.71? use 0.75/0.71
	matches := ix.Match("c1", []float64{0.79, 0.71}, Thresholds{Top1: 0.78, Top2: 0.72, Delta: 0.10})

	require.Len(t, matches, 1)
}

func TestMatchAdmitsNothingBelowTop1(t *testing.T) {
	ix := twoTopicIndex(t)

	matches := ix.Match("c1", []float64{0.77, 0.76}, DefaultThresholds())

	assert.Empty(t, matches)
}

func TestMatchTiesBreakByIndexOrder(t *testing.T) {
	ix := twoTopicIndex(t)

	matches := ix.Match("c1", []float64{0.80, 0.80}, DefaultThresholds())

	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].TopicID)
	assert.Equal(t, "second", matches[1].TopicID)
}

func TestMatchUnknownCourse(t *testing.T) {
	ix := twoTopicIndex(t)

	assert.Empty(t, ix.Match("missing", []float64{0.99, 0.99}, DefaultThresholds()))
}
