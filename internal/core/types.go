package core

import (
	"fmt"
	"strings"
)

// Type is the logical, platform-independent type of a column.
type Type string

const (
	TypeString   Type = "string"
	TypeText     Type = "text"
	TypeInteger  Type = "integer"
	TypeSmallInt Type = "smallint"
	TypeBigInt   Type = "bigint"
	TypeDecimal  Type = "decimal"
	TypeFloat    Type = "float"
	TypeBoolean  Type = "boolean"
	TypeDate     Type = "date"
	TypeTime     Type = "time"
	TypeDateTime Type = "datetime"
	TypeArray    Type = "array"
	TypeBlob     Type = "blob"
	TypeBinary   Type = "binary"
	TypeJSON     Type = "json"
	TypeGUID     Type = "guid"
)

// Types returns every logical type in declaration order.
func Types() []Type {
	return []Type{
		TypeString, TypeText, TypeInteger, TypeSmallInt, TypeBigInt,
		TypeDecimal, TypeFloat, TypeBoolean, TypeDate, TypeTime,
		TypeDateTime, TypeArray, TypeBlob, TypeBinary, TypeJSON, TypeGUID,
	}
}

var typeAliases = map[string]Type{
	"varchar":    TypeString,
	"char":       TypeString,
	"character":  TypeString,
	"longtext":   TypeText,
	"mediumtext": TypeText,
	"int":        TypeInteger,
	"int4":       TypeInteger,
	"mediumint":  TypeInteger,
	"int2":       TypeSmallInt,
	"tinyint":    TypeSmallInt,
	"int8":       TypeBigInt,
	"numeric":    TypeDecimal,
	"double":     TypeFloat,
	"real":       TypeFloat,
	"bool":       TypeBoolean,
	"timestamp":  TypeDateTime,
	"longblob":   TypeBlob,
	"bytea":      TypeBlob,
	"varbinary":  TypeBinary,
	"jsonb":      TypeJSON,
	"uuid":       TypeGUID,
}

// ParseType resolves a logical type name or one of its common SQL aliases.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Types() {
		if string(t) == name {
			return t, nil
		}
	}
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

// IsValid reports whether t is one of the declared logical types.
func (t Type) IsValid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// HasLength reports whether the type accepts a length.
func (t Type) HasLength() bool {
	switch t {
	case TypeString, TypeBinary, TypeBlob:
		return true
	default:
		return false
	}
}

// HasPrecision reports whether the type accepts precision and scale.
func (t Type) HasPrecision() bool { return t == TypeDecimal }

// IsInteger reports whether the type is one of the integer types.
func (t Type) IsInteger() bool {
	switch t {
	case TypeInteger, TypeSmallInt, TypeBigInt:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the type holds numbers.
func (t Type) IsNumeric() bool {
	return t.IsInteger() || t == TypeDecimal || t == TypeFloat
}

// ReferentialAction is the ON DELETE / ON UPDATE behavior of a foreign key.
// The zero value leaves the choice to the platform.
type ReferentialAction string

const (
	ActionDefault    ReferentialAction = ""
	ActionCascade    ReferentialAction = "CASCADE"
	ActionSetNull    ReferentialAction = "SET NULL"
	ActionRestrict   ReferentialAction = "RESTRICT"
	ActionNoAction   ReferentialAction = "NO ACTION"
	ActionSetDefault ReferentialAction = "SET DEFAULT"
)

// ParseReferentialAction normalizes spellings such as "set_null" or "no action".
func ParseReferentialAction(s string) (ReferentialAction, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.Join(strings.Fields(strings.ReplaceAll(norm, "_", " ")), " ")
	switch ReferentialAction(norm) {
	case ActionDefault, ActionCascade, ActionSetNull, ActionRestrict, ActionNoAction, ActionSetDefault:
		return ReferentialAction(norm), nil
	}
	return "", fmt.Errorf("unknown referential action %q", s)
}
