package persistence

import (
	"math"
	"sort"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical), or 0 when either
// vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// CosineDistance converts cosine similarity into a distance in [0, 2].
func CosineDistance(a, b []float64) float64 {
	return 1 - CosineSimilarity(a, b)
}

// nearestMatch pairs a stored model with its distance to the query vector.
type nearestMatch struct {
	model    EmbeddingModel
	distance float64
}

// topKNearest ranks models by ascending distance to the query and returns
// the k closest.
func topKNearest(query []float64, models []EmbeddingModel, k int) []nearestMatch {
	if len(models) == 0 || k <= 0 {
		return []nearestMatch{}
	}

	matches := make([]nearestMatch, 0, len(models))
	for _, m := range models {
		matches = append(matches, nearestMatch{
			model:    m,
			distance: CosineDistance(query, m.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}
