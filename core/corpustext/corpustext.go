// Package corpustext serializes a corpus text buffer together with its
// sparse position→anchor map into one self-describing file.
//
// The file is the literal text with each anchored position marked by
// #anchor# at that offset. A literal # in the text is written as ## so
// the two cases never collide. Reading the file back reproduces the
// exact text and both anchor maps, so the representation round-trips
// byte for byte.
package corpustext

import (
	"os"
	"sort"
	"strings"

	"github.com/emholm/standoff/core/errors"
	"github.com/emholm/standoff/internal/fileutil"
	"github.com/emholm/standoff/internal/logging"
)

// Delim is the anchor marker character.
const Delim = "#"

// Document is a corpus text with its bidirectional anchor maps.
// Positions are byte offsets into Text.
type Document struct {
	Text        string
	PosToAnchor map[int]string
	AnchorToPos map[string]int
}

// Pos resolves an anchor to its position.
func (d *Document) Pos(anchor string) (int, bool) {
	pos, ok := d.AnchorToPos[anchor]
	return pos, ok
}

// Write writes the anchored text to path. posToAnchor maps byte offsets
// (0 ≤ pos ≤ len(text)) to distinct anchors; offsets are processed in
// ascending order.
func Write(path, text string, posToAnchor map[int]string) error {
	positions := make([]int, 0, len(posToAnchor))
	for pos := range posToAnchor {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	var sb strings.Builder
	prev := 0
	for _, pos := range positions {
		sb.WriteString(strings.ReplaceAll(text[prev:pos], Delim, Delim+Delim))
		sb.WriteString(Delim)
		sb.WriteString(posToAnchor[pos])
		sb.WriteString(Delim)
		prev = pos
	}
	sb.WriteString(strings.ReplaceAll(text[prev:], Delim, Delim+Delim))

	if err := fileutil.WriteAtomic(path, []byte(sb.String())); err != nil {
		return err
	}
	logging.FileWritten(path, len(posToAnchor), "chars", len(text))
	return nil
}

// Read reads an anchored corpus text file back into a Document.
// A doubled delimiter decodes to one literal delimiter character; a
// single delimiter opens an anchor token running to the next delimiter.
// An unmatched delimiter is a fatal MismatchedDelimitersError.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	raw := string(data)

	doc := &Document{
		PosToAnchor: make(map[int]string),
		AnchorToPos: make(map[string]int),
	}

	var text strings.Builder
	position := 0
	end := -1
	for {
		start := strings.Index(raw[end+1:], Delim)
		if start < 0 {
			text.WriteString(raw[end+1:])
			break
		}
		start += end + 1
		text.WriteString(raw[end+1 : start])
		position += start - end - 1

		next := strings.Index(raw[start+1:], Delim)
		if next < 0 {
			return nil, errors.NewMismatchedDelimiters(path, start)
		}
		end = next + start + 1

		if end == start+1 {
			// Doubled delimiter: one literal delimiter character.
			text.WriteString(Delim)
			position++
		} else {
			a := raw[start+1 : end]
			doc.PosToAnchor[position] = a
			doc.AnchorToPos[a] = position
		}
	}

	doc.Text = text.String()
	logging.FileRead(path, len(doc.PosToAnchor), "chars", len(doc.Text))
	return doc, nil
}
