package index

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID("src/a.ts", "foo")
	if err != nil {
		t.Fatalf("GenerateID() error: %v", err)
	}
	if id != "src/a.ts:foo" {
		t.Errorf("GenerateID() = %q, want %q", id, "src/a.ts:foo")
	}
	if !strings.HasPrefix(id, FilePrefix("src/a.ts")) {
		t.Errorf("id %q should start with the file prefix", id)
	}
}

func TestGenerateID_Deterministic(t *testing.T) {
	a, _ := GenerateID("src/a.ts", "foo")
	b, _ := GenerateID("src/a.ts", "foo")
	if a != b {
		t.Errorf("GenerateID() not deterministic: %q != %q", a, b)
	}
}

func TestGenerateID_InjectiveForDistinctPairs(t *testing.T) {
	pairs := [][2]string{
		{"src/a.ts", "foo"},
		{"src/a.ts", "bar"},
		{"src/b.ts", "foo"},
		{"lib/a.ts", "foo"},
	}
	seen := map[string][2]string{}
	for _, p := range pairs {
		id, err := GenerateID(p[0], p[1])
		if err != nil {
			t.Fatalf("GenerateID(%q, %q) error: %v", p[0], p[1], err)
		}
		if prev, ok := seen[id]; ok {
			t.Errorf("collision: %v and %v both map to %q", prev, p, id)
		}
		seen[id] = p
	}
}

func TestGenerateID_EmptyInputs(t *testing.T) {
	var verr *ValidationError

	_, err := GenerateID("", "foo")
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty path, got %v", err)
	}

	_, err = GenerateID("src/a.ts", "")
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty name, got %v", err)
	}

	_, err = GenerateID("src/a.ts", "   ")
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for blank name, got %v", err)
	}
}

func TestValidateVector(t *testing.T) {
	if err := ValidateVector([]float64{0.1, -0.5, 0.9}); err != nil {
		t.Errorf("valid vector rejected: %v", err)
	}
	if err := ValidateVector(nil); err == nil {
		t.Error("expected error for empty vector")
	}
	if err := ValidateVector([]float64{0.1, math.NaN()}); err == nil {
		t.Error("expected error for NaN element")
	}
	if err := ValidateVector([]float64{math.Inf(1)}); err == nil {
		t.Error("expected error for infinite element")
	}
}

func TestRecord_VectorIsCopied(t *testing.T) {
	vec := []float64{1, 2, 3}
	r := NewRecord("src/a.ts:foo", "docs", vec, "src/a.ts", "hash")

	vec[0] = 99
	if r.Vector()[0] != 1 {
		t.Error("record vector should not alias the caller's slice")
	}

	out := r.Vector()
	out[1] = 99
	if r.Vector()[1] != 2 {
		t.Error("returned vector should not alias the record's storage")
	}
}
