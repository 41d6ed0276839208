package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/emholm/standoff/core/anchor"
	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/corpustext"
	"github.com/emholm/standoff/core/edge"
	"github.com/emholm/standoff/core/report"
)

// tokenRE is the token boundary rule: maximal runs of letters, maximal
// runs of digits, runs of spaces, single other whitespace, or one other
// character. An anchor point is inserted between consecutive tokens.
var tokenRE = regexp.MustCompile(`\p{L}+|\p{Nd}+| +|\s|.`)

// openElem is one element that has been opened but not yet closed.
type openElem struct {
	name   string
	anchor string
	attrs  []Attr
	line   int
	col    int
}

// Result is the outcome of parsing one document.
type Result struct {
	// Text is the de-anchored corpus text.
	Text string
	// Anchors is the document's anchor store.
	Anchors *anchor.Store
	// Annotations maps each configured store name to its entries in
	// closing order.
	Annotations map[string][]annotation.Entry

	storeNames []string
}

// Flush persists the corpus text and every annotation store. Store
// names are used as file paths, resolved against dir when non-empty.
func (r *Result) Flush(textPath, dir string) error {
	if err := corpustext.Write(textPath, r.Text, r.Anchors.PosToAnchor()); err != nil {
		return err
	}
	for _, name := range r.storeNames {
		path := name
		if dir != "" {
			path = dir + "/" + name
		}
		if err := annotation.Write(path, r.Annotations[name]); err != nil {
			return err
		}
	}
	return nil
}

// Parser is the pseudo-XML state machine. It tolerates overlapping
// elements, stray end tags, and unterminated elements; structural
// problems are reported, never fatal.
type Parser struct {
	cfg *Config
	rep *report.Reporter
	sc  *Scanner

	store    *anchor.Store
	text     strings.Builder
	position int

	// open is a reversed stack: index 0 is the most recently opened
	// element. Closing tags may match any entry, not just the top, so
	// overlap leaves elements below the match untouched.
	open         []openElem
	insideHeader bool

	// skipped accumulates element/attribute pairs outside the
	// configuration so each is warned about only once.
	skipped map[ElemAttr]bool

	annotations map[string][]annotation.Entry
}

// Parse parses one pseudo-XML document.
//
// prefix seeds the anchor generator and prefixes every anchor, so two
// documents parsed with different prefixes never share identifiers.
// All structural events go to rep; the returned Result is complete even
// for badly malformed input.
func Parse(content, prefix string, cfg *Config, rep *report.Reporter) *Result {
	gen := anchor.NewGenerator(prefix, len(content))

	p := &Parser{
		cfg:         cfg,
		rep:         rep,
		store:       anchor.NewStore(gen, prefix),
		skipped:     make(map[ElemAttr]bool),
		annotations: make(map[string][]annotation.Entry),
	}

	content = strings.TrimPrefix(content, "\uFEFF")

	p.sc = NewScanner(content)
	p.sc.Run(p)
	p.close()

	return &Result{
		Text:        p.text.String(),
		Anchors:     p.store,
		Annotations: p.annotations,
		storeNames:  cfg.StoreNames(),
	}
}

// anchorHere returns the anchor for the current position, creating it
// on first reference.
func (p *Parser) anchorHere() string {
	return p.store.At(p.position)
}

// addToken appends one token to the corpus text, anchoring the
// positions before and after it.
func (p *Parser) addToken(token string) {
	if token == "" {
		return
	}
	p.anchorHere()
	p.text.WriteString(token)
	p.position += len(token)
	p.anchorHere()
}

// StartTag implements Handler.
func (p *Parser) StartTag(name string, attrs []Attr) {
	if name == p.cfg.Header || p.insideHeader {
		p.insideHeader = true
		return
	}
	line, col := p.sc.Pos()

	// The pseudo-attribute with an empty name stands for the element
	// itself, so bare elements share the configuration lookup path.
	elemAttrs := append(append([]Attr{}, attrs...), Attr{})
	for _, a := range elemAttrs {
		ea := ElemAttr{Elem: name, Attr: a.Name}
		if _, annotated := p.cfg.StoreFor(ea); annotated || p.cfg.Skipped(ea) || p.skipped[ea] {
			continue
		}
		p.skipped[ea] = true
		if a.Name != "" {
			p.rep.Warningf(line, col, "Skipping XML element <%s %s=%s>", name, a.Name, a.Value)
		} else if len(attrs) == 0 {
			p.rep.Warningf(line, col, "Skipping XML element <%s>", name)
		}
	}

	p.open = append([]openElem{{
		name:   name,
		anchor: p.anchorHere(),
		attrs:  elemAttrs,
		line:   line,
		col:    col,
	}}, p.open...)
}

// EndTag implements Handler.
func (p *Parser) EndTag(name string) {
	if p.insideHeader {
		if name == p.cfg.Header {
			p.insideHeader = false
		}
		return
	}
	line, col := p.sc.Pos()

	ix := -1
	for i, el := range p.open {
		if el.name == name {
			ix = i
			break
		}
	}
	if ix < 0 {
		p.rep.Errorf(line, col, "Closing element </%s>, but it is not open", name)
		return
	}

	el := p.open[ix]
	p.open = append(p.open[:ix:ix], p.open[ix+1:]...)
	end := p.anchorHere()

	var overlapping []string
	for _, other := range p.open[:ix] {
		if !p.cfg.CanOverlap(name, other.name) {
			overlapping = append(overlapping, "<"+other.name+"> ["+other.anchor+":]")
		}
	}
	if len(overlapping) > 0 {
		p.rep.Warningf(line, col, "Tag <%s> [%s:%s], overlapping with %s",
			name, el.anchor, end, strings.Join(overlapping, ", "))
	}

	e := edge.Make(name, edge.Span{Start: el.anchor, End: end})
	for _, a := range el.attrs {
		store, ok := p.cfg.StoreFor(ElemAttr{Elem: name, Attr: a.Name})
		if !ok {
			continue
		}
		p.annotations[store] = append(p.annotations[store], annotation.Entry{Key: e, Value: a.Value})
	}
}

// Text implements Handler. Character data is split into tokens, each
// anchored before and after.
func (p *Parser) Text(content string) {
	line, col := p.sc.Pos()
	for _, ch := range []string{"&", "<", ">"} {
		if strings.Contains(content, ch) {
			p.rep.Errorf(line, col, "XML special character: %s", ch)
		}
	}
	if p.insideHeader {
		return
	}
	for _, token := range tokenRE.FindAllString(content, -1) {
		p.addToken(token)
	}
}

// CharRef implements Handler.
func (p *Parser) CharRef(ref string) {
	r, ok := resolveCharRef(ref)
	if !ok {
		line, col := p.sc.Pos()
		p.rep.Errorf(line, col, "Control character reference: &#%s;", ref)
		return
	}
	if p.insideHeader {
		return
	}
	p.addToken(string(r))
}

// EntityRef implements Handler.
func (p *Parser) EntityRef(name string) {
	text, ok := resolveEntity(name)
	if !ok {
		line, col := p.sc.Pos()
		p.rep.Errorf(line, col, "Unknown HTML entity: &%s;", name)
		return
	}
	if p.insideHeader {
		return
	}
	p.addToken(text)
}

// Comment implements Handler. Comments become synthetic zero-width
// comment elements carrying their text as a value attribute.
func (p *Parser) Comment(text string) {
	line, col := p.sc.Pos()
	if strings.Contains(text, "--") || strings.HasSuffix(text, "-") {
		p.rep.Errorf(line, col, "Comment contains '--' or ends with '-'")
	}
	if p.insideHeader {
		p.rep.Warningf(line, col, "[SKIPPING] Comment in header")
		return
	}
	p.rep.Infof(line, col, "Comment: %d characters wide", utf8.RuneCountInString(text))
	p.StartTag("comment", []Attr{{Name: "value", Value: text}})
	p.EndTag("comment")
}

// ProcInst implements Handler. Only the XML declaration on the first
// line is allowed.
func (p *Parser) ProcInst(data string) {
	line, col := p.sc.Pos()
	if strings.HasPrefix(data, "xml ") && strings.HasSuffix(data, "?") {
		if line != 1 || col != 0 {
			p.rep.Errorf(line, col, "XML declaration not first in file")
		}
		return
	}
	p.rep.Errorf(line, col, "Unknown processing instruction: <?%s>", data)
}

// Decl implements Handler. SGML declarations are not allowed.
func (p *Parser) Decl(data string) {
	line, col := p.sc.Pos()
	p.rep.Errorf(line, col, "SGML declaration: <!%s>", data)
}

// close force-closes every element still open at end of input, so each
// opened element yields exactly one edge, then anchors the final
// position.
func (p *Parser) close() {
	if p.insideHeader {
		line, col := p.sc.Pos()
		p.rep.Warningf(line, col, "(at EOF) Header <%s> never closed", p.cfg.Header)
		p.insideHeader = false
	}
	for len(p.open) > 0 {
		el := p.open[0]
		p.rep.Warningf(el.line, el.col, "(at EOF) Autoclosing tag </%s>, starting at %s", el.name, el.anchor)
		p.EndTag(el.name)
	}
	p.anchorHere()
}
