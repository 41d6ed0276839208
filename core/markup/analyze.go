package markup

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/emholm/standoff/core/report"
)

// ItemStat is the aggregated frequency of one analyzed item (an element
// name, a character reference, an entity name).
type ItemStat struct {
	// Freq is the total occurrence count across all analyzed files.
	Freq int
	// Files counts occurrences per corpus name.
	Files map[string]int
	// Attrs collects attribute names seen on the item (elements only).
	Attrs map[string]bool
}

// Stats is what the analyzer accumulates over a set of source files.
type Stats struct {
	Tags     map[string]*ItemStat
	Header   map[string]*ItemStat
	CharRefs map[string]*ItemStat
	Entities map[string]*ItemStat
	Errors   map[string]int
	Warnings map[string]int
}

func newStats() *Stats {
	return &Stats{
		Tags:     make(map[string]*ItemStat),
		Header:   make(map[string]*ItemStat),
		CharRefs: make(map[string]*ItemStat),
		Entities: make(map[string]*ItemStat),
		Errors:   make(map[string]int),
		Warnings: make(map[string]int),
	}
}

func (s *Stats) bump(table map[string]*ItemStat, item, corpus string) *ItemStat {
	st := table[item]
	if st == nil {
		st = &ItemStat{Files: make(map[string]int), Attrs: make(map[string]bool)}
		table[item] = st
	}
	st.Freq++
	st.Files[corpus]++
	return st
}

// Analyzer scans pseudo-XML files and collects element, attribute and
// reference statistics without producing any annotations. It shares the
// scanner and the tolerance rules with the parser, so whatever it
// reports is exactly what a real parse would encounter.
type Analyzer struct {
	header string
	stats  *Stats

	corpus       string
	rep          *report.Reporter
	sc           *Scanner
	insideHeader bool
	open         []string
}

// NewAnalyzer returns an Analyzer. header is the opaque header element;
// empty means DefaultHeader.
func NewAnalyzer(header string) *Analyzer {
	if header == "" {
		header = DefaultHeader
	}
	return &Analyzer{header: header, stats: newStats()}
}

// Stats returns the accumulated statistics.
func (a *Analyzer) Stats() *Stats {
	return a.stats
}

// AnalyzeFile scans one source document, attributing its counts to the
// given corpus name and reporting structural problems to rep.
func (a *Analyzer) AnalyzeFile(corpus, content string, rep *report.Reporter) {
	a.corpus = corpus
	a.rep = rep
	a.insideHeader = false
	a.open = a.open[:0]

	content = strings.TrimPrefix(content, "\ufeff")
	a.sc = NewScanner(content)
	a.sc.Run(a)

	for len(a.open) > 0 {
		name := a.open[0]
		a.open = a.open[1:]
		line, col := a.sc.Pos()
		rep.Errorf(line, col, "(at EOF) Autoclosing tag </%s>", name)
	}

	a.stats.Errors[corpus] += rep.Errors()
	a.stats.Warnings[corpus] += rep.Warnings()
}

// StartTag implements Handler.
func (a *Analyzer) StartTag(name string, attrs []Attr) {
	table := a.stats.Tags
	if name == a.header || a.insideHeader {
		a.insideHeader = true
		table = a.stats.Header
	} else {
		a.open = append([]string{name}, a.open...)
	}
	st := a.stats.bump(table, name, a.corpus)
	for _, attr := range attrs {
		st.Attrs[attr.Name] = true
	}
}

// EndTag implements Handler.
func (a *Analyzer) EndTag(name string) {
	if a.insideHeader {
		if name == a.header {
			a.insideHeader = false
		}
		return
	}
	for i, open := range a.open {
		if open == name {
			a.open = append(a.open[:i:i], a.open[i+1:]...)
			return
		}
	}
	line, col := a.sc.Pos()
	a.rep.Errorf(line, col, "Closing element </%s>, but it is not open", name)
}

// Text implements Handler.
func (a *Analyzer) Text(content string) {
	line, col := a.sc.Pos()
	for _, ch := range []string{"&", "<", ">"} {
		if strings.Contains(content, ch) {
			a.rep.Errorf(line, col, "XML special character: %s", ch)
		}
	}
}

// CharRef implements Handler.
func (a *Analyzer) CharRef(ref string) {
	if _, ok := resolveCharRef(ref); !ok {
		line, col := a.sc.Pos()
		a.rep.Errorf(line, col, "Control character reference: &#%s;", ref)
		return
	}
	a.stats.bump(a.stats.CharRefs, "#"+ref, a.corpus)
}

// EntityRef implements Handler.
func (a *Analyzer) EntityRef(name string) {
	if _, ok := resolveEntity(name); !ok {
		line, col := a.sc.Pos()
		a.rep.Errorf(line, col, "Unknown HTML entity: &%s;", name)
		return
	}
	a.stats.bump(a.stats.Entities, name, a.corpus)
}

// Comment implements Handler.
func (a *Analyzer) Comment(text string) {
	line, col := a.sc.Pos()
	a.rep.Warningf(line, col, "Comment: %d characters wide", utf8.RuneCountInString(text))
}

// ProcInst implements Handler.
func (a *Analyzer) ProcInst(data string) {
	line, col := a.sc.Pos()
	if strings.HasPrefix(data, "xml ") && strings.HasSuffix(data, "?") {
		if line != 1 || col != 0 {
			a.rep.Errorf(line, col, "XML declaration not first in file")
		}
		return
	}
	a.rep.Errorf(line, col, "Unknown processing instruction: <?%s>", data)
}

// Decl implements Handler.
func (a *Analyzer) Decl(data string) {
	line, col := a.sc.Pos()
	a.rep.Errorf(line, col, "SGML declaration: <!%s>", data)
}

// Summary formats the statistics for human consumption. If maxcount is
// positive, items more frequent than maxcount are elided; the analyzer
// exists to surface the rare, probably-wrong markup.
func (s *Stats) Summary(maxcount int) string {
	var sb strings.Builder

	section := func(title string, table map[string]*ItemStat) {
		names := make([]string, 0, len(table))
		for name := range table {
			if maxcount > 0 && table[name].Freq > maxcount {
				continue
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			return
		}
		sort.Strings(names)
		fmt.Fprintf(&sb, "%s:\n", title)
		for _, name := range names {
			st := table[name]
			fmt.Fprintf(&sb, "  %-20s %6d", name, st.Freq)
			if len(st.Attrs) > 0 {
				attrs := make([]string, 0, len(st.Attrs))
				for attr := range st.Attrs {
					attrs = append(attrs, attr)
				}
				sort.Strings(attrs)
				fmt.Fprintf(&sb, "  [%s]", strings.Join(attrs, " "))
			}
			sb.WriteByte('\n')
		}
	}

	section("Elements", s.Tags)
	section("Header elements", s.Header)
	section("Character references", s.CharRefs)
	section("Entities", s.Entities)

	corpora := make([]string, 0, len(s.Errors))
	seen := make(map[string]bool)
	for c := range s.Errors {
		if !seen[c] {
			seen[c] = true
			corpora = append(corpora, c)
		}
	}
	for c := range s.Warnings {
		if !seen[c] {
			seen[c] = true
			corpora = append(corpora, c)
		}
	}
	sort.Strings(corpora)
	for _, c := range corpora {
		if s.Errors[c] > 0 || s.Warnings[c] > 0 {
			fmt.Fprintf(&sb, "%s: %d errors, %d warnings\n", c, s.Errors[c], s.Warnings[c])
		}
	}

	return sb.String()
}
