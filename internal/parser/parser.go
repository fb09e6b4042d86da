// Package parser reads schema files into the canonical core.Schema
// representation. The format is chosen by file extension.
package parser

import (
	"path/filepath"
	"strings"

	"dbal/internal/core"
	"dbal/internal/parser/mysql"
	"dbal/internal/parser/toml"
	"dbal/internal/parser/yaml"
)

// Parser reads one schema file format.
type Parser interface {
	ParseFile(path string) (*core.Schema, error)
}

// ForPath returns the parser for the extension of path.
func ForPath(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewParser(), nil
	case ".yaml", ".yml":
		return yaml.NewParser(), nil
	case ".sql":
		return mysql.NewParser(), nil
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

// ParseFile parses the schema file at path.
func ParseFile(path string) (*core.Schema, error) {
	p, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path
}
