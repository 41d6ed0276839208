package segment

import (
	"reflect"
	"testing"

	"github.com/emholm/standoff/core/anchor"
	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/edge"
	"github.com/emholm/standoff/core/errors"
)

// testStore anchors the given positions so they can appear in edges.
func testStore(t *testing.T, positions ...int) *anchor.Store {
	t.Helper()
	store := anchor.NewStore(anchor.NewGenerator("testdoc", 256), "testdoc")
	for _, pos := range positions {
		store.At(pos)
	}
	return store
}

func spanEdge(store *anchor.Store, name string, start, end int) string {
	return edge.Make(name, edge.Span{Start: store.At(start), End: store.At(end)})
}

// positions resolves every single-span edge to its position pair.
func positions(t *testing.T, store *anchor.Store, entries []annotation.Entry) [][2]int {
	t.Helper()
	out := make([][2]int, 0, len(entries))
	for _, entry := range entries {
		start, ok := store.Pos(edge.Start(entry.Key))
		if !ok {
			t.Fatalf("unresolvable start in %q", entry.Key)
		}
		end, ok := store.Pos(edge.End(entry.Key))
		if !ok {
			t.Fatalf("unresolvable end in %q", entry.Key)
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

func TestRechunkWhitespace(t *testing.T) {
	text := "one two three four five six"
	store := testStore(t, 8, 18, 24, 27)
	chunks := []annotation.Entry{
		{Key: spanEdge(store, "s", 8, 18)},
		{Key: spanEdge(store, "s", 24, 27)},
	}

	out, err := Rechunk(text, store, chunks, nil, "w", NewWhitespaceTokenizer())
	if err != nil {
		t.Fatalf("Rechunk: %v", err)
	}

	want := [][2]int{{0, 3}, {4, 7}, {8, 13}, {14, 18}, {19, 23}, {24, 27}}
	if got := positions(t, store, out); !reflect.DeepEqual(got, want) {
		t.Errorf("token spans = %v, want %v", got, want)
	}
	for _, entry := range out {
		if edge.Name(entry.Key) != "w" {
			t.Errorf("edge %q not named w", entry.Key)
		}
		if entry.Value != "" {
			t.Errorf("edge %q has value %q, want empty", entry.Key, entry.Value)
		}
	}
}

func TestRechunkIdempotent(t *testing.T) {
	text := "alpha beta\ngamma"
	store := testStore(t, 0, 10, 16)
	chunks := []annotation.Entry{{Key: spanEdge(store, "s", 0, 10)}}

	first, err := Rechunk(text, store, chunks, nil, "w", NewWhitespaceTokenizer())
	if err != nil {
		t.Fatalf("first Rechunk: %v", err)
	}
	second, err := Rechunk(text, store, chunks, nil, "w", NewWhitespaceTokenizer())
	if err != nil {
		t.Fatalf("second Rechunk: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reruns differ:\n%v\n%v", first, second)
	}
}

func TestRechunkExistingSegmentation(t *testing.T) {
	// A pre-existing token [2,4) straddles the chunk boundary at 3. The
	// intervals must be split around it and the token kept as is.
	text := "abcdef"
	store := testStore(t, 2, 3, 4)
	chunks := []annotation.Entry{{Key: spanEdge(store, "s", 0, 3)}}
	existing := []annotation.Entry{{Key: spanEdge(store, "w", 2, 4)}}

	out, err := Rechunk(text, store, chunks, existing, "w", NewWhitespaceTokenizer())
	if err != nil {
		t.Fatalf("Rechunk: %v", err)
	}

	want := [][2]int{{2, 4}, {0, 2}, {4, 6}}
	if got := positions(t, store, out); !reflect.DeepEqual(got, want) {
		t.Errorf("spans = %v, want %v (existing first, no span crossing 3)", got, want)
	}
	if out[0].Key != existing[0].Key {
		t.Errorf("pre-existing edge not preserved: %q", out[0].Key)
	}
}

func TestRechunkUnknownAnchor(t *testing.T) {
	store := testStore(t, 0)
	chunks := []annotation.Entry{{Key: spanEdge(store, "s", 0, 0)}}
	existing := []annotation.Entry{{Key: "w:bogus1-bogus2"}}

	_, err := Rechunk("abc", store, chunks, existing, "w", NewWhitespaceTokenizer())
	if err == nil {
		t.Fatal("Rechunk with unresolvable existing span succeeded")
	}
	var uerr *errors.UnknownAnchorError
	if !errors.As(err, &uerr) {
		t.Fatalf("error %T is not UnknownAnchorError", err)
	}
	if uerr.Anchor != "bogus1" {
		t.Errorf("Anchor = %q, want bogus1", uerr.Anchor)
	}
}

func TestRechunkSkipsWhitespaceTokens(t *testing.T) {
	text := "  a  "
	store := testStore(t)

	out, err := Rechunk(text, store, nil, nil, "w", NewLinebreakTokenizer())
	if err != nil {
		t.Fatalf("Rechunk: %v", err)
	}
	// The linebreak tokenizer returns the whole text as one span; it is
	// trimmed but not empty, so it stays.
	if len(out) != 1 {
		t.Fatalf("got %d edges, want 1: %v", len(out), out)
	}

	out, err = Rechunk("   ", store, nil, nil, "w", NewLinebreakTokenizer())
	if err != nil {
		t.Fatalf("Rechunk: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("whitespace-only text produced edges: %v", out)
	}
}
