package schemafile

import (
	"fmt"
	"strconv"
	"strings"

	"dbal/internal/core"
)

// TypeSpec is a parsed column type such as "varchar(255)" or
// "decimal(10,2) unsigned".
type TypeSpec struct {
	Type      core.Type
	Length    int
	Precision int
	Scale     int
	Fixed     bool
	Unsigned  bool
}

var fixedAliases = map[string]bool{"char": true, "character": true, "binary": true}

// ParseTypeSpec parses a logical type name or SQL alias with optional
// arguments and an optional trailing "unsigned".
func ParseTypeSpec(raw string) (TypeSpec, error) {
	var spec TypeSpec
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return spec, fmt.Errorf("column type is empty")
	}
	if rest, ok := strings.CutSuffix(s, " unsigned"); ok {
		spec.Unsigned = true
		s = strings.TrimSpace(rest)
	}

	name, args := s, ""
	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") {
			return spec, fmt.Errorf("malformed column type %q", raw)
		}
		name = strings.TrimSpace(s[:open])
		args = s[open+1 : len(s)-1]
	}

	t, err := core.ParseType(name)
	if err != nil {
		return spec, err
	}
	spec.Type = t
	spec.Fixed = fixedAliases[name]
	if args == "" {
		return spec, nil
	}

	nums, err := parseArgs(args)
	if err != nil {
		return spec, fmt.Errorf("column type %q: %w", raw, err)
	}
	switch {
	case t.HasPrecision():
		spec.Precision = nums[0]
		if len(nums) > 1 {
			spec.Scale = nums[1]
		}
	case t.HasLength() && len(nums) == 1:
		spec.Length = nums[0]
	case t.IsInteger() && len(nums) == 1:
		// display width, as in int(11)
	default:
		return spec, fmt.Errorf("column type %q does not take arguments", raw)
	}
	return spec, nil
}

func parseArgs(args string) ([]int, error) {
	parts := strings.Split(args, ",")
	if len(parts) > 2 {
		return nil, fmt.Errorf("too many type arguments")
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid type argument %q", strings.TrimSpace(p))
		}
		out = append(out, n)
	}
	return out, nil
}
