package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to diff text cut to fit the size budget.
const TruncationMarker = "\n\n[... truncated: diff exceeded the size limit ...]"

// CommitTypes are the Conventional Commits prefixes the generator may use.
var CommitTypes = []string{
	"build", "chore", "ci", "debug", "docs", "feat", "fix", "perf", "refactor", "style", "test",
}

// TruncateDiff caps diff at limit characters (runes, not bytes) and appends
// TruncationMarker when anything was dropped. The kept text is always a prefix
// of diff and never splits a multi-byte character.
func TruncateDiff(diff string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(diff) <= limit {
		return diff, false
	}
	return diff[:runeOffset(diff, limit)] + TruncationMarker, true
}

// runeOffset returns the byte offset just past the first n runes of s.
func runeOffset(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}

// TypeList renders CommitTypes as "`build:`, `chore:`, ...".
func TypeList() string {
	parts := make([]string, 0, len(CommitTypes))
	for _, t := range CommitTypes {
		parts = append(parts, fmt.Sprintf("`%s:`", t))
	}
	return strings.Join(parts, ", ")
}
