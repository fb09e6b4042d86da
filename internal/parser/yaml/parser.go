// Package yaml reads schema files written in YAML. The document layout is
// the same as the TOML format.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"dbal/internal/core"
	"dbal/internal/parser/schemafile"
)

// Parser reads YAML schema files.
type Parser struct{}

// NewParser creates a new YAML schema parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a YAML schema.
func (p *Parser) ParseFile(path string) (*core.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("yaml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads YAML content from r. Unknown fields are rejected.
func (p *Parser) Parse(r io.Reader) (*core.Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc schemafile.Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yaml: empty document")
		}
		return nil, fmt.Errorf("yaml: decode error: %w", err)
	}

	s, err := schemafile.Convert(&doc)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return s, nil
}
