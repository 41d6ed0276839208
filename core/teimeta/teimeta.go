// Package teimeta extracts document metadata from the header region of
// a TEI-style source file.
//
// The header subtree is the one part of a pseudo-XML document required
// to be well-formed, so it can be handed to a real XML parser and
// queried with XPath.
package teimeta

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/errors"
)

// Metadata is the extracted header content. Fields missing from the
// header are empty.
type Metadata struct {
	Title     string
	Author    string
	Publisher string
	Date      string
	Language  string
}

var (
	titleExpr     = xpath.MustCompile("//titleStmt/title")
	authorExpr    = xpath.MustCompile("//titleStmt/author")
	publisherExpr = xpath.MustCompile("//publicationStmt/publisher")
	dateExpr      = xpath.MustCompile("//publicationStmt/date")
	languageExpr  = xpath.MustCompile("//langUsage/language")
)

// Extract locates the header element in content and parses its
// metadata. header is the element name as the markup scanner reports
// it, lowercase; matching against the raw source is case-insensitive.
func Extract(content, header string) (*Metadata, error) {
	region, err := headerRegion(content, header)
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(strings.NewReader(region))
	if err != nil {
		return nil, &errors.ConfigError{Field: header, Message: "header region is not well-formed XML", Err: err}
	}

	m := &Metadata{
		Title:     textOf(doc, titleExpr),
		Author:    textOf(doc, authorExpr),
		Publisher: textOf(doc, publisherExpr),
		Date:      textOf(doc, dateExpr),
	}
	if lang := xmlquery.QuerySelector(doc, languageExpr); lang != nil {
		m.Language = lang.SelectAttr("ident")
		if m.Language == "" {
			m.Language = strings.TrimSpace(lang.InnerText())
		}
	}
	return m, nil
}

func textOf(doc *xmlquery.Node, expr *xpath.Expr) string {
	n := xmlquery.QuerySelector(doc, expr)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

// headerRegion cuts the header element and its subtree out of content.
func headerRegion(content, header string) (string, error) {
	lower := strings.ToLower(content)
	open := strings.Index(lower, "<"+header)
	if open < 0 {
		return "", errors.NewConfig(header, "no header element in document")
	}
	closeTag := "</" + header + ">"
	end := strings.Index(lower[open:], closeTag)
	if end < 0 {
		return "", errors.NewConfig(header, "header element never closed")
	}
	region := content[open : open+end+len(closeTag)]

	// The source may use mixed case (<teiHeader>); the XML parser needs
	// the tags to agree, so normalize just the header tags themselves.
	openEnd := strings.IndexByte(region, '>')
	if openEnd < 0 {
		return "", errors.NewConfig(header, "malformed header open tag")
	}
	return "<" + header + region[1+len(header):len(region)-len(closeTag)] + closeTag, nil
}

// Entries flattens the metadata into annotation entries, one per
// non-empty field, in a fixed order.
func (m *Metadata) Entries() []annotation.Entry {
	fields := []struct {
		name  string
		value string
	}{
		{"title", m.Title},
		{"author", m.Author},
		{"publisher", m.Publisher},
		{"date", m.Date},
		{"language", m.Language},
	}
	var out []annotation.Entry
	for _, f := range fields {
		if f.value != "" {
			out = append(out, annotation.Entry{Key: f.name, Value: f.value})
		}
	}
	return out
}
