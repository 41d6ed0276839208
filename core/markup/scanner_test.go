package markup

import (
	"fmt"
	"reflect"
	"testing"
)

// recorder captures scanner events as printable strings.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) StartTag(name string, attrs []Attr) {
	if len(attrs) == 0 {
		r.add("start %s", name)
		return
	}
	s := "start " + name
	for _, a := range attrs {
		s += fmt.Sprintf(" %s=%q", a.Name, a.Value)
	}
	r.events = append(r.events, s)
}
func (r *recorder) EndTag(name string)    { r.add("end %s", name) }
func (r *recorder) Text(content string)   { r.add("text %q", content) }
func (r *recorder) CharRef(ref string)    { r.add("charref %s", ref) }
func (r *recorder) EntityRef(name string) { r.add("entity %s", name) }
func (r *recorder) Comment(text string)   { r.add("comment %q", text) }
func (r *recorder) ProcInst(data string)  { r.add("pi %q", data) }
func (r *recorder) Decl(data string)      { r.add("decl %q", data) }

func scan(src string) []string {
	rec := &recorder{}
	NewScanner(src).Run(rec)
	return rec.events
}

func TestScannerEvents(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			"simple element",
			"<w>hi</w>",
			[]string{"start w", `text "hi"`, "end w"},
		},
		{
			"attributes",
			`<w pos="NN" lemma='fox' n=3 flag>x</w>`,
			[]string{`start w pos="NN" lemma="fox" n="3" flag=""`, `text "x"`, "end w"},
		},
		{
			"case folding",
			"<teiHeader></teiHeader>",
			[]string{"start teiheader", "end teiheader"},
		},
		{
			"self closing",
			"<pb n='4'/>",
			[]string{`start pb n="4"`, "end pb"},
		},
		{
			"comment",
			"a<!-- note -->b",
			[]string{`text "a"`, `comment " note "`, `text "b"`},
		},
		{
			"processing instruction",
			`<?xml version="1.0"?>x`,
			[]string{`pi "xml version=\"1.0\"?"`, `text "x"`},
		},
		{
			"declaration",
			"<!DOCTYPE tei>x",
			[]string{`decl "DOCTYPE tei"`, `text "x"`},
		},
		{
			"character references",
			"&#65;&#x42;",
			[]string{"charref 65", "charref x42"},
		},
		{
			"entity reference",
			"a&amp;b",
			[]string{`text "a"`, "entity amp", `text "b"`},
		},
		{
			"bare ampersand is text",
			"fish & chips",
			[]string{`text "fish & chips"`},
		},
		{
			"bare less-than is text",
			"1 < 2",
			[]string{`text "1 < 2"`},
		},
		{
			"unterminated tag",
			"<w attr",
			[]string{"start w attr=\"\""},
		},
		{
			"attribute value with entity",
			`<w lemma="a&amp;b">x</w>`,
			[]string{`start w lemma="a&b"`, `text "x"`, "end w"},
		},
		{
			"multibyte text",
			"<w>räv</w>",
			[]string{"start w", `text "räv"`, "end w"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scan(tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScannerPositions(t *testing.T) {
	type posEvent struct {
		line, col int
	}
	var positions []posEvent

	src := "<a>\nhi</a>"
	sc := NewScanner(src)
	h := handlerFunc{
		onStart: func(string, []Attr) {
			l, c := sc.Pos()
			positions = append(positions, posEvent{l, c})
		},
		onText: func(string) {
			l, c := sc.Pos()
			positions = append(positions, posEvent{l, c})
		},
		onEnd: func(string) {
			l, c := sc.Pos()
			positions = append(positions, posEvent{l, c})
		},
	}
	sc.Run(h)

	want := []posEvent{{1, 0}, {1, 3}, {2, 2}}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("positions = %v, want %v", positions, want)
	}
}

// handlerFunc adapts closures to the Handler interface for tests.
type handlerFunc struct {
	onStart func(string, []Attr)
	onEnd   func(string)
	onText  func(string)
}

func (h handlerFunc) StartTag(name string, attrs []Attr) {
	if h.onStart != nil {
		h.onStart(name, attrs)
	}
}
func (h handlerFunc) EndTag(name string) {
	if h.onEnd != nil {
		h.onEnd(name)
	}
}
func (h handlerFunc) Text(content string) {
	if h.onText != nil {
		h.onText(content)
	}
}
func (h handlerFunc) CharRef(string)   {}
func (h handlerFunc) EntityRef(string) {}
func (h handlerFunc) Comment(string)   {}
func (h handlerFunc) ProcInst(string)  {}
func (h handlerFunc) Decl(string)      {}
