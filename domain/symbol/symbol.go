// Package symbol defines the code symbol inputs supplied by callers.
package symbol

import "strings"

// Kind classifies a code symbol.
type Kind string

// Kind values.
const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindType      Kind = "type"
	KindVariable  Kind = "variable"
	KindUnknown   Kind = "unknown"
)

// CodeSymbol is one documented symbol observed in a source file.
// Instances are supplied by the parsing layer; this package does not own
// their lifecycle.
type CodeSymbol struct {
	name          string
	documentation string
	sourceText    string
	kind          Kind
}

// NewCodeSymbol creates a new CodeSymbol.
func NewCodeSymbol(name, documentation, sourceText string, kind Kind) CodeSymbol {
	if kind == "" {
		kind = KindUnknown
	}
	return CodeSymbol{
		name:          name,
		documentation: documentation,
		sourceText:    sourceText,
		kind:          kind,
	}
}

// Name returns the symbol name.
func (s CodeSymbol) Name() string { return s.name }

// Documentation returns the raw documentation comment, possibly empty.
func (s CodeSymbol) Documentation() string { return s.documentation }

// SourceText returns the symbol's source text.
func (s CodeSymbol) SourceText() string { return s.sourceText }

// Kind returns the symbol kind.
func (s CodeSymbol) Kind() Kind { return s.kind }

// HasDocumentation reports whether the symbol carries documentation with
// any plain-text content after comment markers are stripped.
func (s CodeSymbol) HasDocumentation() bool {
	return s.PlainDocText() != ""
}

// PlainDocText extracts the human-readable text from the documentation
// comment: block and line comment markers are removed, doc-tag keywords
// (e.g. "@param") are dropped, and surrounding whitespace is trimmed.
func (s CodeSymbol) PlainDocText() string {
	doc := s.documentation
	if doc == "" {
		return ""
	}

	doc = strings.TrimSpace(doc)
	doc = strings.TrimPrefix(doc, "/**")
	doc = strings.TrimPrefix(doc, "/*")
	doc = strings.TrimSuffix(doc, "*/")

	var parts []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "///")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, "#")
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "@") {
			// Drop the tag keyword, keep its description.
			if i := strings.IndexAny(line, " \t"); i >= 0 {
				line = strings.TrimSpace(line[i+1:])
			} else {
				line = ""
			}
		}

		if line != "" {
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, " ")
}
