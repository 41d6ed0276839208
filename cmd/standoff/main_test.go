package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/corpustext"
	"github.com/emholm/standoff/core/edge"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

const testConfigYAML = `annotate:
  - elements: s
    store: s.edge
  - elements: w
    store: w.edge
  - elements: w:pos
    store: w.pos
`

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"corpus/a.xml", "a"},
		{"b.xml.gz", "b"},
		{"plain", "plain"},
		{".hidden", ".hidden"},
	}
	for _, tt := range tests {
		if got := baseName(tt.path); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseThenSegment(t *testing.T) {
	dir := t.TempDir()
	src := createTestFile(t, dir, "doc.xml",
		`<s><w pos="UH">Hej</w> <w pos="PN">du</w></s> <s><w pos="JJ">glada</w></s>`)
	cfgPath := createTestFile(t, dir, "markup.yaml", testConfigYAML)
	out := filepath.Join(dir, "out")

	parse := &ParseCmd{Config: cfgPath, Out: out, Sources: []string{src}}
	if err := parse.Run(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	docDir := filepath.Join(out, "doc")
	doc, err := corpustext.Read(filepath.Join(docDir, "text"))
	if err != nil {
		t.Fatalf("reading corpus text: %v", err)
	}
	if doc.Text != "Hej du glada" {
		t.Errorf("corpus text = %q", doc.Text)
	}

	pos, err := annotation.Read(filepath.Join(docDir, "w.pos"))
	if err != nil {
		t.Fatalf("reading w.pos: %v", err)
	}
	if len(pos) != 3 {
		t.Errorf("got %d pos entries, want 3", len(pos))
	}

	// Re-segment the sentences with the whitespace tokenizer; the
	// resulting token spans must line up with the parsed words.
	segOut := filepath.Join(dir, "tok.edge")
	seg := &SegmentCmd{
		Text:      filepath.Join(docDir, "text"),
		Chunk:     filepath.Join(docDir, "s.edge"),
		Element:   "t",
		Tokenizer: "whitespace",
		Out:       segOut,
	}
	if err := seg.Run(); err != nil {
		t.Fatalf("segment: %v", err)
	}

	toks, err := annotation.Read(segOut)
	if err != nil {
		t.Fatalf("reading tokens: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
	words, err := annotation.Read(filepath.Join(docDir, "w.edge"))
	if err != nil {
		t.Fatal(err)
	}
	for i, tok := range toks {
		ts, te := edge.Start(tok.Key), edge.End(tok.Key)
		ws, we := edge.Start(words[i].Key), edge.End(words[i].Key)
		if ts != ws || te != we {
			t.Errorf("token %d spans %s-%s, word spans %s-%s", i, ts, te, ws, we)
		}
	}
}

func TestIndexCmd(t *testing.T) {
	dir := t.TempDir()
	annPath := filepath.Join(dir, "w.pos")
	entries := []annotation.Entry{
		{Key: "w:a1-a2", Value: "NN"},
		{Key: "w:a3-a4", Value: "VB"},
	}
	if err := annotation.Write(annPath, entries); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(dir, "index.db")
	cmd := &IndexCmd{DB: dbPath, Files: []string{annPath}}
	if err := cmd.Run(); err != nil {
		t.Fatalf("index: %v", err)
	}

	ix, err := annotation.OpenIndex(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()
	v, ok, err := ix.Value("w", "w:a1-a2")
	if err != nil || !ok || v != "NN" {
		t.Errorf("Value = %q/%v/%v", v, ok, err)
	}
}

func TestMetaCmd(t *testing.T) {
	dir := t.TempDir()
	src := createTestFile(t, dir, "doc.xml",
		`<teiHeader><fileDesc><titleStmt><title>Titeln</title></titleStmt></fileDesc></teiHeader><text>x</text>`)
	out := filepath.Join(dir, "meta")

	cmd := &MetaCmd{Header: "teiHeader", Out: out, Source: src}
	if err := cmd.Run(); err != nil {
		t.Fatalf("meta: %v", err)
	}

	entries, err := annotation.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Key != "title" || entries[0].Value != "Titeln" {
		t.Errorf("entries = %v", entries)
	}
}
