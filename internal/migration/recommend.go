package migration

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"dbal/internal/diff"
)

const backupSuffixPrefix = "__dbal_backup_"

func migrationRecommendations(bc diff.BreakingChange) []string {
	msg := strings.ToLower(bc.Description)
	var out []string

	switch {
	case strings.Contains(msg, "column rename detected"):
		out = append(out, fmt.Sprintf("Data migration tip: deploy readers of %s that accept both column names before renaming %s.", bc.Table, bc.Object))
	case strings.Contains(msg, "becomes not null"):
		out = append(out, fmt.Sprintf("Data migration tip: backfill %s.%s (UPDATE NULLs) before enforcing NOT NULL.", bc.Table, bc.Object))
	case strings.Contains(msg, "adding not null column without default"):
		out = append(out, fmt.Sprintf("Data migration tip: add %s.%s as NULL first, backfill, then make it NOT NULL.", bc.Table, bc.Object))
	case strings.Contains(msg, "type changes"):
		out = append(out, fmt.Sprintf("Data migration tip: validate cast/backfill for %s.%s before applying the type change.", bc.Table, bc.Object))
	case strings.Contains(msg, "length shrinks"):
		out = append(out, fmt.Sprintf("Data migration tip: check the longest value in %s.%s before shrinking it.", bc.Table, bc.Object))
	case strings.Contains(msg, "table will be dropped"):
		out = append(out, fmt.Sprintf("Safety tip: take a backup or copy data out of %s before DROP TABLE.", bc.Table))
	case strings.Contains(msg, "column will be dropped"):
		out = append(out, fmt.Sprintf("Safety tip: take a backup or copy data out of %s.%s before DROP COLUMN.", bc.Table, bc.Object))
	}

	return out
}

// backupName derives a deterministic backup name for a table that safe mode
// renames instead of dropping. The FNV-1a hash of the name keeps truncated
// names distinct, and the result never exceeds maxLen.
func backupName(name string, maxLen int) string {
	base := strings.TrimSpace(name)

	h := fnv.New64a()
	_, _ = h.Write([]byte(base))
	suffix := fmt.Sprintf("%s%016x", backupSuffixPrefix, h.Sum64())

	if maxLen > 0 && len(base)+len(suffix) > maxLen {
		base = truncateBytes(base, maxLen-len(suffix))
	}
	return base + suffix
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func hasLockingStatements(stmts []string) bool {
	for _, s := range stmts {
		if hasPrefixFold(s, "ALTER TABLE") || hasPrefixFold(s, "CREATE INDEX") ||
			hasPrefixFold(s, "CREATE UNIQUE INDEX") || hasPrefixFold(s, "DROP INDEX") {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
