package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Attr is one attribute of a start tag.
type Attr struct {
	Name  string
	Value string
}

// Handler receives the events of one scan over a markup document.
// The scanner is deliberately forgiving: malformed constructs degrade
// to text instead of stopping the scan.
type Handler interface {
	// StartTag is called for <name ...> and, together with EndTag, for
	// self-closing <name .../>.
	StartTag(name string, attrs []Attr)
	// EndTag is called for </name>.
	EndTag(name string)
	// Text is called for runs of character data between markup.
	Text(content string)
	// CharRef is called for &#nnn; and &#xhh; with ref = "nnn" / "xhh".
	CharRef(ref string)
	// EntityRef is called for &name;.
	EntityRef(name string)
	// Comment is called for <!--text-->.
	Comment(text string)
	// ProcInst is called for <?data> with everything between <? and >.
	ProcInst(data string)
	// Decl is called for <!data> declarations that are not comments.
	Decl(data string)
}

// Scanner walks a markup document once, reporting events to a Handler
// and tracking the source position of the current token.
type Scanner struct {
	src string
	off int

	// position of the token most recently delivered to the handler
	tokLine int
	tokCol  int

	line int
	col  int
}

// NewScanner returns a Scanner over src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, line: 1, tokLine: 1}
}

// Pos returns the 1-based line and 0-based column of the current token.
func (s *Scanner) Pos() (line, col int) {
	return s.tokLine, s.tokCol
}

// advance moves the offset n bytes forward, updating line/col tracking.
func (s *Scanner) advance(n int) {
	for i := 0; i < n; i++ {
		if s.src[s.off+i] == '\n' {
			s.line++
			s.col = 0
		} else {
			s.col++
		}
	}
	s.off += n
}

func (s *Scanner) markToken() {
	s.tokLine, s.tokCol = s.line, s.col
}

// Run scans the whole document, delivering events to h.
func (s *Scanner) Run(h Handler) {
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			h.Text(text.String())
			text.Reset()
		}
	}

	for s.off < len(s.src) {
		c := s.src[s.off]
		switch {
		case c == '<' && s.markupAhead():
			flush()
			s.markToken()
			s.scanMarkup(h)
		case c == '&':
			if ok := s.tryReference(h, flush); !ok {
				text.WriteByte('&')
				s.advance(1)
			}
		default:
			if text.Len() == 0 {
				s.markToken()
			}
			_, size := utf8.DecodeRuneInString(s.src[s.off:])
			text.WriteString(s.src[s.off : s.off+size])
			s.advance(size)
		}
	}
	flush()
}

// markupAhead reports whether the '<' at the current offset starts a
// real markup construct. A '<' followed by anything else is text.
func (s *Scanner) markupAhead() bool {
	if s.off+1 >= len(s.src) {
		return false
	}
	c := s.src[s.off+1]
	if c == '/' || c == '!' || c == '?' {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.off+1:])
	return unicode.IsLetter(r)
}

// scanMarkup consumes one construct starting at '<'.
func (s *Scanner) scanMarkup(h Handler) {
	rest := s.src[s.off:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		s.scanComment(h)
	case strings.HasPrefix(rest, "<!"):
		s.scanDecl(h)
	case strings.HasPrefix(rest, "<?"):
		s.scanProcInst(h)
	case strings.HasPrefix(rest, "</"):
		s.scanEndTag(h)
	default:
		s.scanStartTag(h)
	}
}

func (s *Scanner) scanComment(h Handler) {
	body := s.src[s.off+4:]
	end := strings.Index(body, "-->")
	if end < 0 {
		// Unterminated comment swallows the rest of the input.
		s.advance(len(s.src) - s.off)
		h.Comment(body)
		return
	}
	s.advance(4 + end + 3)
	h.Comment(body[:end])
}

func (s *Scanner) scanDecl(h Handler) {
	body := s.src[s.off+2:]
	end := strings.Index(body, ">")
	if end < 0 {
		s.advance(len(s.src) - s.off)
		h.Decl(body)
		return
	}
	s.advance(2 + end + 1)
	h.Decl(body[:end])
}

func (s *Scanner) scanProcInst(h Handler) {
	body := s.src[s.off+2:]
	end := strings.Index(body, ">")
	if end < 0 {
		s.advance(len(s.src) - s.off)
		h.ProcInst(body)
		return
	}
	s.advance(2 + end + 1)
	h.ProcInst(body[:end])
}

func (s *Scanner) scanEndTag(h Handler) {
	body := s.src[s.off+2:]
	end := strings.Index(body, ">")
	if end < 0 {
		s.advance(len(s.src) - s.off)
		h.EndTag(strings.ToLower(strings.TrimSpace(body)))
		return
	}
	s.advance(2 + end + 1)
	h.EndTag(strings.ToLower(strings.TrimSpace(body[:end])))
}

func (s *Scanner) scanStartTag(h Handler) {
	body := s.src[s.off+1:]
	end := strings.Index(body, ">")
	if end < 0 {
		s.advance(len(s.src) - s.off)
	} else {
		s.advance(1 + end + 1)
		body = body[:end]
	}

	selfClosing := strings.HasSuffix(body, "/")
	if selfClosing {
		body = body[:len(body)-1]
	}

	name, attrs := parseTag(body)
	if name == "" {
		return
	}
	h.StartTag(name, attrs)
	if selfClosing {
		h.EndTag(name)
	}
}

// tryReference consumes a &name; or &#nnn; reference. It returns false,
// consuming nothing, if the ampersand does not open a well-formed
// reference; the caller then treats it as literal text.
func (s *Scanner) tryReference(h Handler, flush func()) bool {
	rest := s.src[s.off+1:]
	end := strings.IndexByte(rest, ';')
	if end <= 0 || end > 64 {
		return false
	}
	ref := rest[:end]

	if strings.HasPrefix(ref, "#") {
		if len(ref) == 1 {
			return false
		}
		flush()
		s.markToken()
		s.advance(1 + end + 1)
		h.CharRef(ref[1:])
		return true
	}

	if !isEntityName(ref) {
		return false
	}
	flush()
	s.markToken()
	s.advance(1 + end + 1)
	h.EntityRef(ref)
	return true
}

func isEntityName(ref string) bool {
	for i, r := range ref {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_' {
			return false
		}
	}
	return ref != ""
}

// parseTag splits the inside of a start tag into the lowercased tag
// name and its attribute list. Attribute values may be double-quoted,
// single-quoted, or bare; an attribute without '=' gets an empty value.
func parseTag(body string) (string, []Attr) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", nil
	}

	nameEnd := strings.IndexFunc(body, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	if nameEnd < 0 {
		return strings.ToLower(body), nil
	}
	name := strings.ToLower(body[:nameEnd])
	rest := body[nameEnd:]

	var attrs []Attr
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}

		// attribute name
		i := strings.IndexFunc(rest, func(r rune) bool {
			return unicode.IsSpace(r) || r == '='
		})
		var attrName string
		if i < 0 {
			attrName = rest
			rest = ""
		} else {
			attrName = rest[:i]
			rest = rest[i:]
		}
		attrName = strings.ToLower(attrName)

		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if !strings.HasPrefix(rest, "=") {
			if attrName != "" {
				attrs = append(attrs, Attr{Name: attrName})
			}
			continue
		}
		rest = strings.TrimLeftFunc(rest[1:], unicode.IsSpace)

		var value string
		switch {
		case strings.HasPrefix(rest, `"`):
			if j := strings.Index(rest[1:], `"`); j >= 0 {
				value = rest[1 : 1+j]
				rest = rest[j+2:]
			} else {
				value = rest[1:]
				rest = ""
			}
		case strings.HasPrefix(rest, "'"):
			if j := strings.Index(rest[1:], "'"); j >= 0 {
				value = rest[1 : 1+j]
				rest = rest[j+2:]
			} else {
				value = rest[1:]
				rest = ""
			}
		default:
			if j := strings.IndexFunc(rest, unicode.IsSpace); j >= 0 {
				value = rest[:j]
				rest = rest[j:]
			} else {
				value = rest
				rest = ""
			}
		}
		if attrName != "" {
			attrs = append(attrs, Attr{Name: attrName, Value: unescapeAttr(value)})
		}
	}
	return name, attrs
}
