package search

import "math"

// Result is one similarity search hit.
type Result struct {
	id       string
	text     string
	filePath string
	score    float64
}

// NewResult creates a Result.
func NewResult(id, text, filePath string, score float64) Result {
	return Result{
		id:       id,
		text:     text,
		filePath: filePath,
		score:    score,
	}
}

// ID returns the matched record's identifier.
func (r Result) ID() string { return r.id }

// Text returns the matched record's documentation text.
func (r Result) Text() string { return r.text }

// FilePath returns the matched record's file path.
func (r Result) FilePath() string { return r.filePath }

// Score returns the bounded similarity score in (0, 1].
func (r Result) Score() float64 { return r.score }

// ScoreFromDistance converts a vector distance into a bounded similarity
// score via 1/(1+|distance|). A distance of zero maps to 1; the score
// approaches 0 as the distance grows.
func ScoreFromDistance(distance float64) float64 {
	return 1 / (1 + math.Abs(distance))
}
