// Package index holds the domain model for the embedding index: records,
// identifiers, the reconciliation planner and its error taxonomy.
package index

import (
	"fmt"
	"math"
	"strings"
)

// IDSeparator joins the normalized file path and the symbol name inside a
// record identifier.
const IDSeparator = ":"

// Record is one stored embedding for a documented code symbol.
// Records are immutable: an update is a delete followed by a reinsert.
type Record struct {
	id          string
	text        string
	vector      []float64
	filePath    string
	contentHash string
}

// NewRecord creates a Record. The vector is copied.
func NewRecord(id, text string, vector []float64, filePath, contentHash string) Record {
	vec := make([]float64, len(vector))
	copy(vec, vector)
	return Record{
		id:          id,
		text:        text,
		vector:      vec,
		filePath:    filePath,
		contentHash: contentHash,
	}
}

// ID returns the record identifier (normalized file path + ":" + symbol name).
func (r Record) ID() string { return r.id }

// Text returns the embedded documentation text.
func (r Record) Text() string { return r.text }

// Vector returns the embedding vector (copy).
func (r Record) Vector() []float64 {
	vec := make([]float64, len(r.vector))
	copy(vec, r.vector)
	return vec
}

// FilePath returns the normalized workspace-relative file path.
func (r Record) FilePath() string { return r.filePath }

// ContentHash returns the digest of the embedded text.
func (r Record) ContentHash() string { return r.contentHash }

// GenerateID builds the deterministic record identifier for a symbol:
// filePath + ":" + symbolName. filePath must already be normalized
// (workspace-relative, forward slashes). Distinct (path, name) pairs map to
// distinct identifiers.
func GenerateID(filePath, symbolName string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", NewValidationError("filePath", "must not be empty")
	}
	if strings.TrimSpace(symbolName) == "" {
		return "", NewValidationError("symbolName", "must not be empty")
	}
	return filePath + IDSeparator + symbolName, nil
}

// FilePrefix returns the identifier prefix shared by every record of a file.
func FilePrefix(filePath string) string {
	return filePath + IDSeparator
}

// ValidateVector checks that a vector is non-empty and all-finite.
func ValidateVector(vector []float64) error {
	if len(vector) == 0 {
		return NewValidationError("vector", "must not be empty")
	}
	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewValidationError("vector", fmt.Sprintf("element %d is not finite", i))
		}
	}
	return nil
}
