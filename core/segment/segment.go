// Package segment re-chunks an anchored corpus text into finer spans.
//
// A rechunk run takes coarse parent spans (sentences, paragraphs),
// optionally a finer pre-existing segmentation whose boundaries must be
// respected, and a Tokenizer that splits substrings. New spans reuse
// the anchors already bound to their positions, so repeated runs over
// unchanged input produce byte-identical edges.
package segment

import (
	"sort"
	"strings"

	"github.com/emholm/standoff/core/anchor"
	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/edge"
	"github.com/emholm/standoff/core/errors"
	"github.com/emholm/standoff/internal/logging"
)

// Span is a half-open [Start,End) byte range, relative to the text a
// Tokenizer was given.
type Span struct {
	Start int
	End   int
}

// Tokenizer splits a substring into spans. Returned spans must be
// non-overlapping and in ascending order.
type Tokenizer interface {
	SpanTokenize(text string) []Span
}

// interval is an absolute chunk interval during rechunking.
type interval struct {
	start int
	end   int
}

// Rechunk segments every chunk interval of text into element spans.
//
// chunks holds the coarse parent edges; their anchors partition the
// text into intervals. existing, if non-nil, holds a finer
// segmentation whose spans may not be cut by an interval boundary:
// offending intervals are split at the token's own boundary first.
// Each interval substring is then tokenized, and every non-whitespace
// token becomes one element edge. Entries from existing are carried
// over into the result ahead of the new edges.
//
// Anchors are resolved through anchors, which must have been built
// from the corpus text document's own maps.
func Rechunk(text string, anchors *anchor.Store, chunks, existing []annotation.Entry, element string, tok Tokenizer) ([]annotation.Entry, error) {
	boundaries, err := chunkBoundaries(text, anchors, chunks)
	if err != nil {
		return nil, err
	}

	intervals := make([]interval, 0, len(boundaries))
	for i := 1; i < len(boundaries); i++ {
		intervals = append(intervals, interval{boundaries[i-1], boundaries[i]})
	}

	out := make([]annotation.Entry, 0, len(existing))
	seen := make(map[string]bool)

	if len(existing) > 0 {
		tokens, err := tokenSpans(anchors, existing)
		if err != nil {
			return nil, err
		}
		intervals = splitAtTokens(intervals, tokens)
		logging.Debug("reorganized chunk intervals", "count", len(intervals))

		for _, entry := range existing {
			if !seen[entry.Key] {
				seen[entry.Key] = true
				out = append(out, entry)
			}
		}
	}

	for _, iv := range intervals {
		// Splitting can leave empty or inverted remainders.
		if iv.start >= iv.end {
			continue
		}
		for _, sp := range tok.SpanTokenize(text[iv.start:iv.end]) {
			start := iv.start + sp.Start
			end := iv.start + sp.End
			if strings.TrimSpace(text[start:end]) == "" {
				continue
			}
			e := edge.Make(element, edge.Span{Start: anchors.At(start), End: anchors.At(end)})
			if !seen[e] {
				seen[e] = true
				out = append(out, annotation.Entry{Key: e})
			}
		}
	}

	return out, nil
}

// chunkBoundaries collects every anchored position referenced by the
// chunk edges, plus the text ends, sorted and deduplicated.
func chunkBoundaries(text string, anchors *anchor.Store, chunks []annotation.Entry) ([]int, error) {
	set := map[int]bool{0: true, len(text): true}
	for _, entry := range chunks {
		for _, sp := range edge.Spans(entry.Key) {
			for _, a := range []string{sp.Start, sp.End} {
				pos, ok := anchors.Pos(a)
				if !ok {
					return nil, errors.NewUnknownAnchor(a, entry.Key)
				}
				set[pos] = true
			}
		}
	}
	return sortedKeys(set), nil
}

// tokenSpans resolves a pre-existing segmentation to absolute position
// pairs, sorted by start.
func tokenSpans(anchors *anchor.Store, existing []annotation.Entry) ([]interval, error) {
	var tokens []interval
	for _, entry := range existing {
		for _, sp := range edge.Spans(entry.Key) {
			start, ok := anchors.Pos(sp.Start)
			if !ok {
				return nil, errors.NewUnknownAnchor(sp.Start, entry.Key)
			}
			end, ok := anchors.Pos(sp.End)
			if !ok {
				return nil, errors.NewUnknownAnchor(sp.End, entry.Key)
			}
			tokens = append(tokens, interval{start, end})
		}
	}
	sortIntervals(tokens)
	return tokens, nil
}

// splitAtTokens adjusts chunk intervals so that no pre-existing token
// crosses an interval edge. An interval cut by a token is split at the
// token's own start, and its remainder resumes at the token's end.
func splitAtTokens(intervals []interval, tokens []interval) []interval {
	for n := range intervals {
		start, end := intervals[n].start, intervals[n].end
		for _, t := range tokens {
			if t.end <= start {
				continue
			}
			if t.start >= end {
				break
			}
			if start != t.start {
				intervals = append(intervals, interval{start, t.start})
			}
			start = t.end
			intervals[n] = interval{start, end}
		}
	}
	sortIntervals(intervals)
	return intervals
}

func sortIntervals(ivs []interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].start != ivs[j].start {
			return ivs[i].start < ivs[j].start
		}
		return ivs[i].end < ivs[j].end
	})
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
