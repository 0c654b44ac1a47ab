package sparql

import (
	"fmt"
	"strings"
)

// StatementType classifies a statement by its leading keyword, which
// decides whether it goes to the query or the update endpoint and which
// Accept header is sent.
type StatementType int

const (
	// StatementTypeUnknown is returned for text with no recognized
	// leading keyword.
	StatementTypeUnknown StatementType = iota
	StatementTypeSelect
	StatementTypeAsk
	StatementTypeConstruct
	StatementTypeDescribe
	StatementTypeUpdate
	StatementTypeDelete
)

// IsQuery reports whether the statement is one of the four query forms.
func (t StatementType) IsQuery() bool {
	switch t {
	case StatementTypeSelect, StatementTypeAsk, StatementTypeConstruct, StatementTypeDescribe:
		return true
	}
	return false
}

// IsUpdate reports whether the statement is an update form.
func (t StatementType) IsUpdate() bool {
	return t == StatementTypeUpdate || t == StatementTypeDelete
}

// ResponseMIMEType returns the Accept header value to request for this
// statement type: JSON results for SELECT/ASK, N-Quads for
// CONSTRUCT/DESCRIBE, plain text for the update forms.
func (t StatementType) ResponseMIMEType() string {
	switch t {
	case StatementTypeSelect, StatementTypeAsk:
		return "application/sparql-results+json"
	case StatementTypeConstruct, StatementTypeDescribe:
		return "application/n-quads"
	default:
		return "text/plain"
	}
}

// Statement is a fully composed SPARQL statement: the rendered prefix
// block followed by the trimmed body. The text is immutable after
// construction and is sent over the wire exactly as rendered.
type Statement struct {
	prefixes *Prefixes
	text     string
	typ      StatementType
}

// NewStatement composes a statement from the given prefixes and body.
func NewStatement(prefixes *Prefixes, body string) Statement {
	text := prefixes.String() + strings.TrimSpace(body)
	return Statement{
		prefixes: prefixes,
		text:     text,
		typ:      classify(body),
	}
}

// classify finds the first keyword of the statement body, skipping
// PREFIX and BASE declarations and comment lines.
func classify(body string) StatementType {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words := strings.Fields(line)
		for i := 0; i < len(words); i++ {
			switch strings.ToUpper(words[i]) {
			case "PREFIX":
				// skip the prefix name and IRI tokens, the verb may
				// follow on the same line
				i += 2
			case "BASE":
				i++
			case "SELECT":
				return StatementTypeSelect
			case "ASK":
				return StatementTypeAsk
			case "CONSTRUCT":
				return StatementTypeConstruct
			case "DESCRIBE":
				return StatementTypeDescribe
			case "INSERT", "LOAD", "CLEAR", "CREATE", "DROP", "COPY", "MOVE", "ADD", "WITH":
				return StatementTypeUpdate
			case "DELETE":
				return StatementTypeDelete
			default:
				return StatementTypeUnknown
			}
		}
	}
	return StatementTypeUnknown
}

// Type returns the statement's classification.
func (s Statement) Type() StatementType {
	return s.typ
}

// String returns the exact text sent over the wire.
func (s Statement) String() string {
	return s.text
}

// NumberedLines renders the statement with 1-based line numbers, for
// diagnostics.
func (s Statement) NumberedLines() string {
	var b strings.Builder
	for i, line := range strings.Split(s.text, "\n") {
		fmt.Fprintf(&b, "%04d: %s\n", i+1, line)
	}
	return b.String()
}

// WithoutComments returns the statement text with trailing #-comments
// stripped from each line. Diagnostics only, the stripped text is never
// executed.
func (s Statement) WithoutComments() string {
	return StripComments(s.text)
}
