// Command standoff converts pseudo-XML corpus sources into standoff
// annotations and runs the downstream stages that consume them.
package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/emholm/standoff/core/anchor"
	"github.com/emholm/standoff/core/annotation"
	"github.com/emholm/standoff/core/corpustext"
	"github.com/emholm/standoff/core/fileid"
	"github.com/emholm/standoff/core/markup"
	"github.com/emholm/standoff/core/report"
	"github.com/emholm/standoff/core/segment"
	"github.com/emholm/standoff/core/sqlite"
	"github.com/emholm/standoff/core/teimeta"
	"github.com/emholm/standoff/internal/fileutil"
	"github.com/emholm/standoff/internal/logging"
)

const version = "0.2.0"

var cli struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	Parse   ParseCmd   `cmd:"" help:"Parse pseudo-XML sources into corpus text and annotation files"`
	Segment SegmentCmd `cmd:"" help:"Segment an anchored corpus text into finer spans"`
	Analyze AnalyzeCmd `cmd:"" help:"Collect element and reference statistics over sources"`
	Fileid  FileidCmd  `cmd:"" help:"Assign short stable ids to a list of corpus files"`
	Meta    MetaCmd    `cmd:"" help:"Extract header metadata from a source file"`
	Index   IndexCmd   `cmd:"" help:"Load annotation files into a local SQLite index"`
	Cat     CatCmd     `cmd:"" help:"Decode a corpus text file back to plain text"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ParseCmd parses source files. Each source gets its own output
// directory under Out, holding the corpus text plus one annotation file
// per configured store.
type ParseCmd struct {
	Config  string   `required:"" short:"c" help:"Parser configuration (YAML)" type:"existingfile"`
	Out     string   `required:"" short:"o" help:"Output directory" type:"path"`
	Sources []string `arg:"" help:"Pseudo-XML source files" type:"existingfile"`
}

func (c *ParseCmd) Run() error {
	cfg, err := markup.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	// Anchor prefixes come from the file id assignment, so two sources
	// can never mint the same anchor.
	prefixes := make(map[string]string)
	for _, entry := range fileid.Assign(c.Sources) {
		prefixes[entry.Key] = entry.Value
	}

	for _, src := range c.Sources {
		content, err := fileutil.ReadSource(src)
		if err != nil {
			return err
		}
		rep := report.New(src)
		res := markup.Parse(string(content), prefixes[src], cfg, rep)

		dir := filepath.Join(c.Out, baseName(src))
		if err := res.Flush(filepath.Join(dir, "text"), dir); err != nil {
			return err
		}
		logging.Info("parsed source",
			"source", src, "dir", dir,
			"warnings", rep.Warnings(), "errors", rep.Errors())
	}
	return nil
}

// SegmentCmd tokenizes the chunk intervals of a parsed corpus.
type SegmentCmd struct {
	Text      string `required:"" help:"Corpus text file" type:"existingfile"`
	Chunk     string `required:"" help:"Annotation file with the coarse chunk edges" type:"existingfile"`
	Existing  string `help:"Annotation file with a finer pre-existing segmentation" type:"existingfile"`
	Element   string `required:"" short:"e" help:"Element name for the new edges (e.g. w)"`
	Tokenizer string `default:"word" help:"Tokenizer to apply"`
	Out       string `required:"" short:"o" help:"Output annotation file" type:"path"`
}

func (c *SegmentCmd) Run() error {
	tok, err := segment.NewTokenizer(c.Tokenizer)
	if err != nil {
		return err
	}
	doc, err := corpustext.Read(c.Text)
	if err != nil {
		return err
	}
	chunks, err := annotation.Read(c.Chunk)
	if err != nil {
		return err
	}
	var existing []annotation.Entry
	if c.Existing != "" {
		if existing, err = annotation.Read(c.Existing); err != nil {
			return err
		}
	}

	gen := anchor.NewGenerator(c.Text, len(doc.Text))
	store := anchor.NewStoreFrom(gen, baseName(c.Text), doc.PosToAnchor)

	out, err := segment.Rechunk(doc.Text, store, chunks, existing, c.Element, tok)
	if err != nil {
		return err
	}
	return annotation.Write(c.Out, out)
}

// AnalyzeCmd scans sources and prints aggregate statistics.
type AnalyzeCmd struct {
	Header   string   `default:"" help:"Header element name (default teiheader)"`
	Maxcount int      `default:"0" help:"Elide items more frequent than this (0 = show all)"`
	Sources  []string `arg:"" help:"Pseudo-XML source files" type:"existingfile"`
}

func (c *AnalyzeCmd) Run() error {
	a := markup.NewAnalyzer(c.Header)
	for _, src := range c.Sources {
		content, err := fileutil.ReadSource(src)
		if err != nil {
			return err
		}
		rep := report.New(src)
		rep.Silent = true
		a.AnalyzeFile(baseName(src), string(content), rep)
	}
	fmt.Print(a.Stats().Summary(c.Maxcount))
	return nil
}

// FileidCmd assigns ids, and optionally content hashes, to files.
type FileidCmd struct {
	Out    string   `required:"" short:"o" help:"Output annotation file" type:"path"`
	Hashes string   `help:"Also write BLAKE3 content hashes to this annotation file" type:"path"`
	Files  []string `arg:"" help:"Corpus files"`
}

func (c *FileidCmd) Run() error {
	if err := annotation.Write(c.Out, fileid.Assign(c.Files)); err != nil {
		return err
	}
	if c.Hashes == "" {
		return nil
	}
	hashes, err := fileid.Hashes(c.Files)
	if err != nil {
		return err
	}
	return annotation.Write(c.Hashes, hashes)
}

// MetaCmd extracts header metadata.
type MetaCmd struct {
	Header string `default:"teiheader" help:"Header element name"`
	Out    string `short:"o" help:"Output annotation file (default: print to stdout)" type:"path"`
	Source string `arg:"" help:"Pseudo-XML source file" type:"existingfile"`
}

func (c *MetaCmd) Run() error {
	content, err := fileutil.ReadSource(c.Source)
	if err != nil {
		return err
	}
	m, err := teimeta.Extract(string(content), strings.ToLower(c.Header))
	if err != nil {
		return err
	}
	entries := m.Entries()
	if c.Out != "" {
		return annotation.Write(c.Out, entries)
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\n", e.Key, e.Value)
	}
	return nil
}

// IndexCmd loads annotation files into a SQLite index. Each file is
// loaded as a store named after its base name.
type IndexCmd struct {
	DB    string   `required:"" help:"Index database path" type:"path"`
	Files []string `arg:"" help:"Annotation files" type:"existingfile"`
}

func (c *IndexCmd) Run() error {
	ix, err := annotation.OpenIndex(c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()

	for _, f := range c.Files {
		entries, err := annotation.Read(f)
		if err != nil {
			return err
		}
		if err := ix.Add(baseName(f), entries); err != nil {
			return err
		}
		logging.Info("indexed store", "store", baseName(f), "edges", len(entries))
	}
	return nil
}

// CatCmd prints the plain text of a corpus text file.
type CatCmd struct {
	Text string `arg:"" help:"Corpus text file" type:"existingfile"`
}

func (c *CatCmd) Run() error {
	doc, err := corpustext.Read(c.Text)
	if err != nil {
		return err
	}
	fmt.Print(doc.Text)
	return nil
}

// VersionCmd prints build information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("standoff %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

// baseName strips the directory and every extension, so "a/b.xml.gz"
// becomes "b".
func baseName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

func logLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("standoff"),
		kong.Description("Standoff annotation toolkit for pseudo-XML corpora"),
		kong.UsageOnError(),
	)

	format := logging.FormatText
	if cli.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(logLevel(cli.LogLevel), format)
	logging.Info("starting", "run", uuid.NewString(), "command", ctx.Command())

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
