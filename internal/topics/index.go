package topics

import (
	"context"
	"fmt"
	"math"

	"studybuddy/internal/models"
)

// Embedder produces one embedding vector per input text, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Entry pairs a topic with its L2-normalized embedding vector.
type Entry struct {
	Topic  models.Topic
	Vector []float64
}

// Index holds every course's topic entries for one processing run. It is
// built once before document iteration and read-only afterwards; courses
// without topics are simply absent.
type Index struct {
	byCourse map[string][]Entry
}

// BuildIndex embeds all topic labels and groups the entries by course.
// Embedding is batched per course, one call for all of a course's labels.
func BuildIndex(ctx context.Context, embedder Embedder, topics []models.Topic) (*Index, error) {
	grouped := make(map[string][]models.Topic)
	var courseOrder []string
	for _, t := range topics {
		if _, seen := grouped[t.CourseID]; !seen {
			courseOrder = append(courseOrder, t.CourseID)
		}
		grouped[t.CourseID] = append(grouped[t.CourseID], t)
	}

	ix := &Index{byCourse: make(map[string][]Entry, len(grouped))}
	for _, courseID := range courseOrder {
		courseTopics := grouped[courseID]
		labels := make([]string, len(courseTopics))
		for i, t := range courseTopics {
			labels[i] = t.Label
		}

		vectors, err := embedder.EmbedTexts(ctx, labels)
		if err != nil {
			return nil, fmt.Errorf("failed to embed topics for course %s: %w", courseID, err)
		}
		if len(vectors) != len(courseTopics) {
			return nil, fmt.Errorf("embedding count mismatch for course %s: got %d, want %d",
				courseID, len(vectors), len(courseTopics))
		}

		entries := make([]Entry, len(courseTopics))
		for i, t := range courseTopics {
			entries[i] = Entry{Topic: t, Vector: Normalize(vectors[i])}
		}
		ix.byCourse[courseID] = entries
	}

	return ix, nil
}

// HasCourse reports whether any topic entries exist for the course.
func (ix *Index) HasCourse(courseID string) bool {
	return len(ix.byCourse[courseID]) > 0
}

// Course returns the course's entries, or nil when it has none.
func (ix *Index) Course(courseID string) []Entry {
	return ix.byCourse[courseID]
}

// Courses returns the number of courses with at least one topic entry.
func (ix *Index) Courses() int {
	return len(ix.byCourse)
}

// Normalize returns the L2-normalized copy of vec. The zero vector is
// returned unchanged.
func Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

// Dot returns the dot product of a and b. On normalized vectors this is the
// cosine similarity.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
