package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// gapTokenizer yields the spans between matches of a gap pattern.
type gapTokenizer struct {
	gap *regexp.Regexp
}

func (t gapTokenizer) SpanTokenize(text string) []Span {
	var spans []Span
	prev := 0
	for _, m := range t.gap.FindAllStringIndex(text, -1) {
		if m[0] > prev {
			spans = append(spans, Span{prev, m[0]})
		}
		prev = m[1]
	}
	if prev < len(text) {
		spans = append(spans, Span{prev, len(text)})
	}
	return spans
}

// NewWhitespaceTokenizer returns a Tokenizer that yields maximal runs
// of non-whitespace.
func NewWhitespaceTokenizer() Tokenizer {
	return gapTokenizer{gap: regexp.MustCompile(`\s+`)}
}

// NewLinebreakTokenizer returns a Tokenizer that splits on newlines,
// swallowing surrounding whitespace.
func NewLinebreakTokenizer() Tokenizer {
	return gapTokenizer{gap: regexp.MustCompile(`\s*\n\s*`)}
}

// NewBlanklineTokenizer returns a Tokenizer that splits on blank lines.
func NewBlanklineTokenizer() Tokenizer {
	return gapTokenizer{gap: regexp.MustCompile(`\s*\n\s*\n\s*`)}
}

// wordRE matches one word token: letter/digit runs possibly joined by
// internal periods with an optional trailing period (abbreviations like
// "t.ex."), or any single non-space character.
var wordRE = regexp.MustCompile(`[\p{L}\p{Nd}]+(?:\.[\p{L}\p{Nd}]+)*\.?|\S`)

// postSentenceRE matches tokens that trail a sentence after its final
// period, like closing quotes and brackets.
var postSentenceRE = regexp.MustCompile(`^[“”"')\]}]+$`)

// WordTokenizer splits text into word tokens. A sentence-final period
// is split off its word ("piper." becomes "piper", ".") unless the word
// is a known abbreviation ("t.ex." stays whole).
type WordTokenizer struct {
	// Abbreviations holds period-stripped abbreviation stems ("t.ex").
	Abbreviations map[string]bool
}

// NewWordTokenizer returns a WordTokenizer with the default Swedish
// abbreviation set.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{Abbreviations: DefaultAbbreviations()}
}

func (t *WordTokenizer) SpanTokenize(text string) []Span {
	var spans []Span
	for _, m := range wordRE.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{m[0], m[1]})
	}
	if len(spans) == 0 {
		return spans
	}

	// Walk back over closing quotes and brackets to the last real word.
	pos := len(spans) - 1
	for pos >= 0 && postSentenceRE.MatchString(text[spans[pos].Start:spans[pos].End]) {
		pos--
	}
	if pos < 0 {
		return spans
	}

	word := text[spans[pos].Start:spans[pos].End]
	if !strings.HasSuffix(word, ".") || !containsWordChar(word) {
		return spans
	}
	stem := strings.TrimSuffix(word, ".")
	if t.Abbreviations[stem] {
		return spans
	}

	cut := spans[pos].End - 1
	split := append([]Span{}, spans[:pos]...)
	split = append(split, Span{spans[pos].Start, cut}, Span{cut, cut + 1})
	split = append(split, spans[pos+1:]...)
	return split
}

func containsWordChar(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return true
		}
	}
	return false
}

// sentenceEndRE matches a candidate sentence terminator: a run of
// sentence punctuation followed by whitespace or end of text.
var sentenceEndRE = regexp.MustCompile(`([.!?]+)(\s+|$)`)

// trailingWordRE captures the word immediately before a period,
// including internal periods, for the abbreviation check.
var trailingWordRE = regexp.MustCompile(`[\p{L}\p{Nd}]+(?:\.[\p{L}\p{Nd}]+)*$`)

// SentenceTokenizer splits text into sentences on ./!/? runs followed
// by whitespace. A lone period after a known abbreviation does not end
// the sentence.
type SentenceTokenizer struct {
	Abbreviations map[string]bool
}

// NewSentenceTokenizer returns a SentenceTokenizer with the default
// Swedish abbreviation set.
func NewSentenceTokenizer() *SentenceTokenizer {
	return &SentenceTokenizer{Abbreviations: DefaultAbbreviations()}
}

func (t *SentenceTokenizer) SpanTokenize(text string) []Span {
	var spans []Span
	start := 0
	for _, m := range sentenceEndRE.FindAllStringSubmatchIndex(text, -1) {
		punct := text[m[2]:m[3]]
		if punct == "." && t.Abbreviations[trailingWordRE.FindString(text[:m[2]])] {
			continue
		}
		if m[3] > start {
			spans = append(spans, Span{start, m[3]})
		}
		start = m[1]
	}
	if start < len(text) {
		spans = append(spans, Span{start, len(text)})
	}
	return spans
}

// NewTokenizer returns the named tokenizer. Names returns the valid
// choices.
func NewTokenizer(name string) (Tokenizer, error) {
	switch name {
	case "whitespace":
		return NewWhitespaceTokenizer(), nil
	case "linebreak":
		return NewLinebreakTokenizer(), nil
	case "blankline":
		return NewBlanklineTokenizer(), nil
	case "word":
		return NewWordTokenizer(), nil
	case "sentence":
		return NewSentenceTokenizer(), nil
	}
	return nil, fmt.Errorf("unknown tokenizer %q (choose from %s)", name, strings.Join(Names(), ", "))
}

// Names lists the tokenizers NewTokenizer accepts, sorted.
func Names() []string {
	names := []string{"whitespace", "linebreak", "blankline", "word", "sentence"}
	sort.Strings(names)
	return names
}

// DefaultAbbreviations returns the built-in Swedish abbreviation set,
// keyed by period-stripped stem.
func DefaultAbbreviations() map[string]bool {
	set := make(map[string]bool, len(abbreviations))
	for _, a := range abbreviations {
		set[a] = true
	}
	return set
}

var abbreviations = []string{
	"a.a", "a.d", "agr", "a.k.a", "alt", "ang", "anm", "art", "avd",
	"avl", "b.b", "betr", "b.g", "b.h", "bif", "bl.a", "b.r.b", "b.t.w",
	"civ.ek", "civ.ing", "co", "dir", "div", "d.m", "doc", "dr", "d.s",
	"d.s.o", "d.v", "d.v.s", "d.y", "dåv", "d.ä", "e.a.g", "e.d",
	"eftr", "eg", "ekon", "e.kr", "dyl", "em", "e.m", "enl", "e.o",
	"etc", "e.u", "ev", "ex", "exkl", "f", "farm", "f.d", "ff", "fig",
	"f.kr", "f.m", "f.n", "forts", "fr", "fr.a", "fr.o.m", "f.v.b",
	"f.v.t", "f.ö", "följ", "föreg", "förf", "gr", "g.s",
	"h.h.k.k.h.h", "h.k.h", "h.m", "ill", "inkl", "i.o.m", "st.f",
	"jur", "kand", "kap", "kl", "lb", "leg", "lic", "lisp", "m.a.a",
	"mag", "m.a.o", "m.a.p", "m.fl", "m.h.a", "m.h.t", "milj", "m.m",
	"m.m.d", "mom", "m.v.h", "möjl", "n.b", "näml", "nästk", "o",
	"o.d", "odont", "o.dyl", "omkr", "o.m.s", "op", "ordf", "o.s.a",
	"o.s.v", "pers", "p.gr", "p.g.a", "pol", "prel", "prof", "rc",
	"ref", "resp", "r.i.p", "rst", "s.a.s", "sek", "sekr", "sid",
	"sign", "sistl", "s.k", "sk", "skålp", "s.m", "s.m.s", "sp",
	"spec", "s.st", "st", "stud", "särsk", "tab", "tekn", "tel",
	"teol", "t.ex", "tf", "t.h", "tim", "t.o.m", "tr", "trol", "t.v",
	"u.p.a", "urspr", "utg", "v", "w", "v.d", "å.k", "ä.k.s", "äv",
	"ö.g", "ö.h", "ök", "övers",
}
