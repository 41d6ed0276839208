package fileid

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAssignDeterministic(t *testing.T) {
	files := []string{"corpus/a.xml", "corpus/b.xml", "corpus/c.xml"}

	first := Assign(files)
	second := Assign(files)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same file list produced different ids:\n%v\n%v", first, second)
	}

	if len(first) != len(files) {
		t.Fatalf("got %d entries, want %d", len(first), len(files))
	}
	seen := make(map[string]bool)
	for i, entry := range first {
		if entry.Key != files[i] {
			t.Errorf("entry %d keyed %q, want %q", i, entry.Key, files[i])
		}
		if entry.Value == "" {
			t.Errorf("empty id for %q", entry.Key)
		}
		if seen[entry.Value] {
			t.Errorf("duplicate id %q", entry.Value)
		}
		seen[entry.Value] = true
	}
}

func TestAssignIdsStableAcrossListOrder(t *testing.T) {
	// Each id is seeded from its own file name, so reordering the list
	// cannot reassign ids (absent collisions).
	a := Assign([]string{"x.xml", "y.xml"})
	b := Assign([]string{"y.xml", "x.xml"})

	ids := make(map[string]string)
	for _, e := range a {
		ids[e.Key] = e.Value
	}
	for _, e := range b {
		if ids[e.Key] != e.Value {
			t.Errorf("id for %q changed with list order: %q vs %q", e.Key, ids[e.Key], e.Value)
		}
	}
}

func TestHashes(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.txt")
	p2 := filepath.Join(dir, "two.txt")
	if err := os.WriteFile(p1, []byte("samma innehåll"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p2, []byte("annat innehåll"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := Hashes([]string{p1, p2})
	if err != nil {
		t.Fatalf("Hashes: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Value == entries[1].Value {
		t.Error("different contents hashed identically")
	}
	for _, e := range entries {
		if len(e.Value) != 64 {
			t.Errorf("hash %q is not 64 hex digits", e.Value)
		}
	}

	if _, err := Hashes([]string{filepath.Join(dir, "absent")}); err == nil {
		t.Error("Hashes on a missing file succeeded")
	}
}
