// Package anchor generates the sparse position identifiers that standoff
// annotations reference instead of raw byte offsets.
//
// Anchors are short pseudo-random hex tokens bound to text positions.
// Each document owns its own Generator, seeded explicitly, so identifier
// sequences are reproducible in tests and independent across documents
// processed in the same process.
package anchor

import (
	"encoding/hex"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/emholm/standoff/core/edge"
)

// defaultWidth is the identifier width in hex digits when the caller
// gives no sizing hint.
const defaultWidth = 10

// Generator draws pseudo-random identifiers from a privately seeded
// source. It is not safe for concurrent use; give each document its own.
type Generator struct {
	rng   *rand.Rand
	width int
}

// NewGenerator returns a Generator seeded from an arbitrary seed string.
// maxIdents is an upper bound on the number of identifiers that will be
// drawn; the identifier width grows with log16(maxIdents) so that random
// collisions stay negligible. Pass 0 to use the default width.
func NewGenerator(seed string, maxIdents int) *Generator {
	sum := blake3.Sum256([]byte(seed))
	width := defaultWidth
	if maxIdents > 0 {
		width = int(math.Log(float64(maxIdents))/math.Log(16) + 1.5)
	}
	return &Generator{
		rng:   rand.New(rand.NewChaCha8(sum)),
		width: width,
	}
}

// Width returns the identifier width in hex digits.
func (g *Generator) Width() int {
	return g.width
}

// Ident returns a fresh identifier with the given prefix, retrying until
// it does not collide with the existing set. Separator characters in the
// prefix are stripped so identifiers never break edge encoding. The
// identifier is NOT added to the existing set.
func (g *Generator) Ident(prefix string, exists func(string) bool) string {
	prefix = strings.ReplaceAll(prefix, edge.EdgeSep, "")
	prefix = strings.ReplaceAll(prefix, edge.SpanSep, "")
	for {
		ident := prefix + g.hexToken()
		if exists == nil || !exists(ident) {
			return ident
		}
	}
}

// hexToken draws width hex digits from the generator.
func (g *Generator) hexToken() string {
	buf := make([]byte, (g.width+1)/2)
	for i := 0; i < len(buf); i += 8 {
		n := g.rng.Uint64()
		for j := i; j < i+8 && j < len(buf); j++ {
			buf[j] = byte(n)
			n >>= 8
		}
	}
	return hex.EncodeToString(buf)[:g.width]
}

// Store is the per-document bidirectional position/anchor mapping.
// Anchors are created lazily, only when a position is first referenced.
type Store struct {
	gen    *Generator
	prefix string

	posToAnchor map[int]string
	anchorToPos map[string]int
}

// NewStore returns an empty Store that draws new anchors from gen,
// prefixing each with prefix (typically a short corpus or file id).
func NewStore(gen *Generator, prefix string) *Store {
	return &Store{
		gen:         gen,
		prefix:      prefix,
		posToAnchor: make(map[int]string),
		anchorToPos: make(map[string]int),
	}
}

// NewStoreFrom returns a Store preloaded with an existing
// position→anchor mapping, e.g. one read back from a corpus text file.
// New positions referenced later still get fresh anchors from gen.
func NewStoreFrom(gen *Generator, prefix string, posToAnchor map[int]string) *Store {
	s := NewStore(gen, prefix)
	for pos, a := range posToAnchor {
		s.posToAnchor[pos] = a
		s.anchorToPos[a] = pos
	}
	return s
}

// At returns the anchor bound to pos, creating and recording it on first
// reference. Repeated calls for the same position return the same anchor.
func (s *Store) At(pos int) string {
	if a, ok := s.posToAnchor[pos]; ok {
		return a
	}
	a := s.gen.Ident(s.prefix, func(ident string) bool {
		_, taken := s.anchorToPos[ident]
		return taken
	})
	s.posToAnchor[pos] = a
	s.anchorToPos[a] = pos
	return a
}

// Pos resolves an anchor back to its position.
func (s *Store) Pos(anchor string) (int, bool) {
	pos, ok := s.anchorToPos[anchor]
	return pos, ok
}

// Len returns the number of anchored positions.
func (s *Store) Len() int {
	return len(s.posToAnchor)
}

// PosToAnchor returns the live position→anchor map. Callers must treat
// it as read-only.
func (s *Store) PosToAnchor() map[int]string {
	return s.posToAnchor
}

// AnchorToPos returns the live anchor→position map. Callers must treat
// it as read-only.
func (s *Store) AnchorToPos() map[string]int {
	return s.anchorToPos
}
