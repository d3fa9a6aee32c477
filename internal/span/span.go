// Package span provides the byte-range type shared across the lexer, AST, and parser.
package span

import "fmt"

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Between returns the span covering from a's start to b's end.
func Between(a, b Span) Span {
	return Span{Start: a.Start, End: b.End}
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// String renders the span as "start..end".
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Slice returns the substring of source covered by the span.
func (s Span) Slice(source string) string {
	return source[s.Start:s.End]
}
