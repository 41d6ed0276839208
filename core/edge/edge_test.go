package edge

import (
	"reflect"
	"testing"
)

func TestMakeSingleSpan(t *testing.T) {
	e := Make("w", Span{Start: "a1", End: "a2"})
	if e != "w:a1-a2" {
		t.Fatalf("Make = %q, want %q", e, "w:a1-a2")
	}
	if got := Name(e); got != "w" {
		t.Errorf("Name = %q, want %q", got, "w")
	}
	if got := Start(e); got != "a1" {
		t.Errorf("Start = %q, want %q", got, "a1")
	}
	if got := End(e); got != "a2" {
		t.Errorf("End = %q, want %q", got, "a2")
	}
}

func TestMakeMultiSpan(t *testing.T) {
	e := Make("link", Span{Start: "a1", End: "a2"}, Span{Start: "a3", End: "a4"})
	if e != "link:a1-a2:a3-a4" {
		t.Fatalf("Make = %q, want %q", e, "link:a1-a2:a3-a4")
	}
	if got := Start(e); got != "a1" {
		t.Errorf("Start = %q, want %q", got, "a1")
	}
	if got := End(e); got != "a4" {
		t.Errorf("End = %q, want %q", got, "a4")
	}
	want := []Span{{Start: "a1", End: "a2"}, {Start: "a3", End: "a4"}}
	if got := Spans(e); !reflect.DeepEqual(got, want) {
		t.Errorf("Spans = %v, want %v", got, want)
	}
}

func TestMakeStripsSeparators(t *testing.T) {
	// Names containing separator characters are cleaned on encode so the
	// decoded accessors stay well-defined.
	e := Make("a:b-c", Span{Start: "x1", End: "x2"})
	if e != "abc:x1-x2" {
		t.Fatalf("Make = %q, want %q", e, "abc:x1-x2")
	}
	if got := Name(e); got != "abc" {
		t.Errorf("Name = %q, want %q", got, "abc")
	}
}

func TestDecodeAccessorsOnOddInput(t *testing.T) {
	tests := []struct {
		name  string
		edge  string
		wantN string
		wantS string
		wantE string
	}{
		// A key without a span separator comes back whole from End.
		{"no spans", "w", "w", "", "w"},
		{"empty", "", "", "", ""},
		{"single span", "s:aa-bb", "s", "aa", "bb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.edge); got != tt.wantN {
				t.Errorf("Name = %q, want %q", got, tt.wantN)
			}
			if got := Start(tt.edge); got != tt.wantS {
				t.Errorf("Start = %q, want %q", got, tt.wantS)
			}
			if got := End(tt.edge); got != tt.wantE {
				t.Errorf("End = %q, want %q", got, tt.wantE)
			}
		})
	}
}
