// Package markup parses pseudo-XML source documents into a standoff
// representation: a flat corpus text with sparse anchors plus one
// annotation store per configured element/attribute group.
//
// Pseudo-XML is almost like XML, but admits overlapping elements.
package markup

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/emholm/standoff/core/errors"
)

// DefaultHeader is the default header element name. The scanner
// lowercases tag names, so this matches TEI's <teiHeader>.
const DefaultHeader = "teiheader"

// ElemAttr identifies one element attribute; Attr is empty for the
// element itself.
type ElemAttr struct {
	Elem string
	Attr string
}

func (ea ElemAttr) String() string {
	if ea.Attr == "" {
		return ea.Elem
	}
	return ea.Elem + ":" + ea.Attr
}

// Config is the validated parser configuration. Build one with
// NewConfig or LoadConfig; the zero value is not usable.
type Config struct {
	// Header is the element whose subtree is opaque to anchoring.
	Header string

	annotations map[ElemAttr]string
	skip        map[ElemAttr]bool
	overlap     map[[2]string]bool
	storeNames  []string
}

// elemSpec is the participle grammar for element specification strings:
// one or more +-joined element names with an optional :attribute.
// Examples: "w", "w:pos", "s+p", "s+p:n".
//
//nolint:govet // participle grammar tags are not standard struct tags
type elemSpec struct {
	Names []string `parser:"@Ident ( '+' @Ident )*"`
	Attr  string   `parser:"( ':' @Ident )?"`
}

var specLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Punct", Pattern: `[+:]`},
	{Name: "Ident", Pattern: `[^+:\s]+`},
})

var specParser = participle.MustBuild[elemSpec](
	participle.Lexer(specLexer),
)

// parseElemSpec parses an element specification string.
func parseElemSpec(s string) (*elemSpec, error) {
	spec, err := specParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ConfigError{Field: s, Message: "invalid element specification", Err: err}
	}
	return spec, nil
}

// NewConfig builds a Config from specification strings.
//
// elements and stores are parallel: each element group (e.g. "s+p:n")
// is bound to one annotation store name. skip lists element[:attribute]
// specs to ignore silently; overlap lists +-joined groups of element
// names that may overlap without a warning. header selects the opaque
// header element; the empty string means DefaultHeader.
//
// Skip and annotate sets must be disjoint; a violation is rejected here,
// before any parsing begins.
func NewConfig(elements, stores, skip, overlap []string, header string) (*Config, error) {
	if len(elements) != len(stores) {
		return nil, errors.NewConfig("elements", fmt.Sprintf(
			"element groups and store names must be the same length (%d vs %d)", len(elements), len(stores)))
	}
	if header == "" {
		header = DefaultHeader
	}

	cfg := &Config{
		Header:      header,
		annotations: make(map[ElemAttr]string),
		skip:        make(map[ElemAttr]bool),
		overlap:     make(map[[2]string]bool),
	}

	seenStores := make(map[string]bool)
	for i, group := range elements {
		spec, err := parseElemSpec(group)
		if err != nil {
			return nil, err
		}
		store := stores[i]
		if store == "" {
			return nil, errors.NewConfig(group, "empty store name")
		}
		for _, name := range spec.Names {
			cfg.annotations[ElemAttr{Elem: name, Attr: spec.Attr}] = store
		}
		if !seenStores[store] {
			seenStores[store] = true
			cfg.storeNames = append(cfg.storeNames, store)
		}
	}

	for _, s := range skip {
		spec, err := parseElemSpec(s)
		if err != nil {
			return nil, err
		}
		for _, name := range spec.Names {
			cfg.skip[ElemAttr{Elem: name, Attr: spec.Attr}] = true
		}
	}

	for ea := range cfg.skip {
		if _, dup := cfg.annotations[ea]; dup {
			return nil, errors.NewConfig(ea.String(), "appears in both skip and annotate sets")
		}
	}

	for _, group := range overlap {
		spec, err := parseElemSpec(group)
		if err != nil {
			return nil, err
		}
		if spec.Attr != "" {
			return nil, errors.NewConfig(group, "overlap groups take element names only")
		}
		for _, t1 := range spec.Names {
			for _, t2 := range spec.Names {
				if t1 != t2 {
					cfg.overlap[[2]string{t1, t2}] = true
				}
			}
		}
	}

	return cfg, nil
}

// StoreFor returns the annotation store bound to the element/attribute,
// if any.
func (c *Config) StoreFor(ea ElemAttr) (string, bool) {
	store, ok := c.annotations[ea]
	return store, ok
}

// Skipped reports whether the element/attribute is configured to be
// ignored silently.
func (c *Config) Skipped(ea ElemAttr) bool {
	return c.skip[ea]
}

// CanOverlap reports whether the closing element may overlap the
// still-open element without a warning.
func (c *Config) CanOverlap(closing, open string) bool {
	return c.overlap[[2]string{closing, open}]
}

// StoreNames returns the configured store names in declaration order.
func (c *Config) StoreNames() []string {
	return c.storeNames
}

// FileConfig is the YAML form of a parser configuration.
type FileConfig struct {
	Header   string         `yaml:"header"`
	Annotate []AnnotateRule `yaml:"annotate"`
	Skip     []string       `yaml:"skip"`
	Overlap  []string       `yaml:"overlap"`
}

// AnnotateRule binds one element group to one annotation store.
type AnnotateRule struct {
	Elements string `yaml:"elements"`
	Store    string `yaml:"store"`
}

// Validate validates the file configuration.
func (fc *FileConfig) Validate() error {
	if err := validation.ValidateStruct(fc,
		validation.Field(&fc.Annotate, validation.Required),
	); err != nil {
		return err
	}
	for _, rule := range fc.Annotate {
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates a single annotate rule.
func (r AnnotateRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Elements, validation.Required),
		validation.Field(&r.Store, validation.Required),
	)
}

// LoadConfig reads a YAML parser configuration from path and compiles
// it into a Config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, &errors.ConfigError{Field: path, Message: "invalid YAML", Err: err}
	}
	return fc.Compile()
}

// Compile validates the file configuration and builds a Config.
func (fc *FileConfig) Compile() (*Config, error) {
	if err := fc.Validate(); err != nil {
		return nil, &errors.ConfigError{Message: "invalid configuration file", Err: err}
	}
	elements := make([]string, len(fc.Annotate))
	stores := make([]string, len(fc.Annotate))
	for i, rule := range fc.Annotate {
		elements[i] = rule.Elements
		stores[i] = rule.Store
	}
	return NewConfig(elements, stores, fc.Skip, fc.Overlap, fc.Header)
}
