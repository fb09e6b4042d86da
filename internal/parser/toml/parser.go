// Package toml reads schema files written in TOML.
package toml

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"dbal/internal/core"
	"dbal/internal/parser/schemafile"
)

// Parser reads TOML schema files.
type Parser struct{}

// NewParser creates a new TOML schema parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a TOML schema.
func (p *Parser) ParseFile(path string) (*core.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads TOML content from r. Keys the document model does not know
// are rejected so typos do not silently drop columns or constraints.
func (p *Parser) Parse(r io.Reader) (*core.Schema, error) {
	var doc schemafile.Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("toml: unknown keys: %s", strings.Join(keys, ", "))
	}

	s, err := schemafile.Convert(&doc)
	if err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return s, nil
}
