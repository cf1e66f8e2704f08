package index

import (
	"sort"

	"github.com/docvec/docvec/domain/symbol"
)

// Plan is the minimal set of store mutations that aligns the persisted
// index with the currently observed symbol set for one file.
type Plan struct {
	idsToDelete     []string
	symbolsToUpsert []symbol.CodeSymbol
}

// IDsToDelete returns the ids present in the store but absent from the
// current symbol set, sorted for deterministic processing.
func (p Plan) IDsToDelete() []string {
	ids := make([]string, len(p.idsToDelete))
	copy(ids, p.idsToDelete)
	return ids
}

// SymbolsToUpsert returns the symbols whose id is not yet in the store,
// in their original order.
func (p Plan) SymbolsToUpsert() []symbol.CodeSymbol {
	syms := make([]symbol.CodeSymbol, len(p.symbolsToUpsert))
	copy(syms, p.symbolsToUpsert)
	return syms
}

// Empty reports whether the plan requires no mutations.
func (p Plan) Empty() bool {
	return len(p.idsToDelete) == 0 && len(p.symbolsToUpsert) == 0
}

// BuildPlan computes the reconciliation plan for one file.
//
// Expected ids are derived only from symbols with non-empty documentation.
// Ids present in existingIDs but not expected are deleted. Symbols whose id
// is already stored are treated as unchanged and skipped, even when their
// documentation text differs; the stored content hash is not consulted.
//
// Symbols whose name fails id generation are ignored.
func BuildPlan(existingIDs []string, symbols []symbol.CodeSymbol, filePath string) (Plan, error) {
	if filePath == "" {
		return Plan{}, NewValidationError("filePath", "must not be empty")
	}

	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	expected := make(map[string]struct{}, len(symbols))
	var toUpsert []symbol.CodeSymbol
	for _, s := range symbols {
		id, err := GenerateID(filePath, s.Name())
		if err != nil {
			continue
		}
		if s.HasDocumentation() {
			expected[id] = struct{}{}
		}
		if _, ok := existing[id]; !ok {
			toUpsert = append(toUpsert, s)
		}
	}

	var toDelete []string
	for id := range existing {
		if _, ok := expected[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}
	sort.Strings(toDelete)

	return Plan{idsToDelete: toDelete, symbolsToUpsert: toUpsert}, nil
}
