package topics

import "sort"

// Default admission thresholds.
const (
	DefaultTop1Threshold  = 0.78
	DefaultTop2Threshold  = 0.72
	DefaultDeltaThreshold = 0.05
)

// Thresholds parameterize the admission rule: Top1 gates the best-scoring
// topic, Top2 and Delta together gate a second one. A second topic is admitted
// only when it is individually confident and close enough to the leader to be
// co-relevant, not merely for being second-best.
type Thresholds struct {
	Top1  float64
	Top2  float64
	Delta float64
}

// DefaultThresholds returns the tuned production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Top1:  DefaultTop1Threshold,
		Top2:  DefaultTop2Threshold,
		Delta: DefaultDeltaThreshold,
	}
}

// Match is one admitted topic for a segment.
type Match struct {
	TopicID    string
	Similarity float64
	Rank       int
}

// Match scores a normalized segment embedding against every topic entry of
// the course and returns 0, 1 or 2 admitted topics. Ranking is by similarity
// descending with ties broken by topic order in the index, so results are
// deterministic. An unknown course returns nothing.
func (ix *Index) Match(courseID string, embedding []float64, th Thresholds) []Match {
	entries := ix.byCourse[courseID]
	if len(entries) == 0 {
		return nil
	}

	type scored struct {
		entry int
		score float64
	}
	scores := make([]scored, len(entries))
	for i, e := range entries {
		scores[i] = scored{entry: i, score: Dot(embedding, e.Vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	top := scores[0]
	if top.score < th.Top1 {
		return nil
	}

	matches := []Match{{
		TopicID:    entries[top.entry].Topic.ID,
		Similarity: top.score,
		Rank:       1,
	}}

	if len(scores) > 1 {
		second := scores[1]
		if second.score >= th.Top2 && top.score-second.score <= th.Delta {
			matches = append(matches, Match{
				TopicID:    entries[second.entry].Topic.ID,
				Similarity: second.score,
				Rank:       2,
			})
		}
	}

	return matches
}
