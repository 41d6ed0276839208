// Package fileid assigns short stable identifiers to a set of corpus
// files.
//
// Identifiers are drawn from per-file generators seeded with the file
// name, so the same file list always maps to the same ids. The result
// is an ordinary annotation file keyed by file name.
package fileid

import (
	"encoding/hex"
	"os"

	"github.com/zeebo/blake3"

	"github.com/emholm/standoff/core/anchor"
	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/errors"
)

// Assign maps each file name to a short identifier, unique within the
// list. Identifier width is sized for twice the number of files, so
// adding a few files later rarely changes the width.
func Assign(files []string) []annotation.Entry {
	taken := make(map[string]bool, len(files))
	out := make([]annotation.Entry, 0, len(files))
	for _, f := range files {
		gen := anchor.NewGenerator(f, len(files)*2)
		id := gen.Ident("", func(s string) bool { return taken[s] })
		taken[id] = true
		out = append(out, annotation.Entry{Key: f, Value: id})
	}
	return out
}

// Hashes reads every file and returns its BLAKE3 content hash, hex
// encoded, keyed by file name. Pairs with Assign for change detection:
// an id names the file, the hash names its content.
func Hashes(files []string) ([]annotation.Entry, error) {
	out := make([]annotation.Entry, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.NewIO("read", f, err)
		}
		sum := blake3.Sum256(data)
		out = append(out, annotation.Entry{Key: f, Value: hex.EncodeToString(sum[:])})
	}
	return out, nil
}
