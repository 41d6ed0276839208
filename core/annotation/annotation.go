// Package annotation reads and writes standoff annotation files.
//
// An annotation file is UTF-8 text with one record per line:
//
//	key<space>value
//
// Keys are edge strings (see core/edge), values are free text. A
// backslash or newline inside a value is escaped so the file stays
// strictly line-oriented. Entry order is preserved: downstream tools
// rely on insertion order matching document order.
package annotation

import (
	"os"
	"strings"

	"github.com/emholm/standoff/core/errors"
	"github.com/emholm/standoff/internal/fileutil"
	"github.com/emholm/standoff/internal/logging"
)

// Delim separates the key from the value on each line.
const Delim = " "

// Entry is one (key, value) record.
type Entry struct {
	Key   string
	Value string
}

// Write writes the entries to path, overwriting any existing file.
func Write(path string, entries []Entry) error {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Key)
		sb.WriteString(Delim)
		sb.WriteString(escape(e.Value))
		sb.WriteByte('\n')
	}
	if err := fileutil.WriteAtomic(path, []byte(sb.String())); err != nil {
		return err
	}
	logging.FileWritten(path, len(entries))
	return nil
}

// Read reads an annotation file back into its ordered entries.
// A line without a delimiter is a fatal CorruptAnnotationError.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		logging.FileRead(path, 0)
		return nil, nil
	}

	var entries []Entry
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, found := strings.Cut(line, Delim)
		if !found {
			return nil, errors.NewCorruptAnnotation(path, i+1)
		}
		entries = append(entries, Entry{Key: key, Value: unescape(value)})
	}
	logging.FileRead(path, len(entries))
	return entries, nil
}

// Exists reports whether an annotation file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Map collapses entries into a key→value map, keeping the last value
// for duplicate keys.
func Map(entries []Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

// Keys returns the keys of the entries in order.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "\n", `\n`)
	return value
}

// unescape decodes left to right so values containing literal
// backslash-n sequences survive the round trip.
func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var sb strings.Builder
	sb.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && i+1 < len(value) {
			switch value[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
