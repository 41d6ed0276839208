// Package edge encodes and decodes standoff annotation keys.
//
// An edge is a name plus one or more anchor spans, serialized as
//
//	name:start-end[:start-end...]
//
// The string form is the only identity an edge has; annotation stores
// use it directly as the record key.
package edge

import "strings"

const (
	// EdgeSep separates the name and the spans of an edge.
	EdgeSep = ":"
	// SpanSep separates the start and end anchor within a span.
	SpanSep = "-"
)

// Span is an ordered pair of anchors.
type Span struct {
	Start string
	End   string
}

// Make builds an edge string from a name and a non-empty list of spans.
// Separator characters inside the name or the anchors are stripped;
// anchors are generated without them, so this is only a safety net.
func Make(name string, spans ...Span) string {
	parts := make([]string, 0, len(spans)+1)
	parts = append(parts, name)
	for _, s := range spans {
		parts = append(parts, safeJoin(SpanSep, s.Start, s.End))
	}
	return safeJoin(EdgeSep, parts...)
}

// Name returns the substring before the first edge separator.
func Name(edge string) string {
	name, _, _ := strings.Cut(edge, EdgeSep)
	return name
}

// Spans returns every span of the edge.
func Spans(edge string) []Span {
	parts := strings.Split(edge, EdgeSep)
	spans := make([]Span, 0, len(parts)-1)
	for _, part := range parts[1:] {
		start, end, _ := strings.Cut(part, SpanSep)
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// Start returns the start anchor of the first span: the substring
// between the first edge separator and the first span separator.
func Start(edge string) string {
	_, rest, _ := strings.Cut(edge, EdgeSep)
	start, _, _ := strings.Cut(rest, SpanSep)
	return start
}

// End returns the end anchor of the last span: the substring after the
// last span separator. A key without a span separator is returned
// unchanged.
func End(edge string) string {
	if i := strings.LastIndex(edge, SpanSep); i >= 0 {
		return edge[i+len(SpanSep):]
	}
	return edge
}

// safeJoin joins elems with sep, removing any occurrence of sep inside
// the elements themselves.
func safeJoin(sep string, elems ...string) string {
	cleaned := make([]string, len(elems))
	for i, e := range elems {
		cleaned[i] = strings.ReplaceAll(e, sep, "")
	}
	return strings.Join(cleaned, sep)
}
