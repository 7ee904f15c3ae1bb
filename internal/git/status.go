package git

import (
	"context"
	"sort"
	"strings"

	"github.com/samzong/autocommit/internal/gitutil"
	"github.com/samzong/autocommit/internal/stringsutil"
)

// StatusEntry is one path from `git status --porcelain`.
type StatusEntry struct {
	Index    byte
	Worktree byte
	Path     string
	OrigPath string
}

// Untracked reports whether the path is unknown to the index.
func (e StatusEntry) Untracked() bool {
	return e.Index == '?' && e.Worktree == '?'
}

// Code is the two-letter porcelain status, e.g. " M" or "??".
func (e StatusEntry) Code() string {
	return string([]byte{e.Index, e.Worktree})
}

func (e StatusEntry) String() string {
	if e.OrigPath != "" {
		return e.Code() + " " + e.OrigPath + " -> " + e.Path
	}
	return e.Code() + " " + e.Path
}

// Status lists every changed path, untracked files included, sorted by path.
func (c *Client) Status(ctx context.Context) ([]StatusEntry, error) {
	result, err := c.runner.Run(ctx, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, gitutil.WrapGitError("git status failed", result, err)
	}
	return parseStatusZ(result.StdoutString(false)), nil
}

// parseStatusZ parses NUL-separated porcelain v1 output. Renames and copies
// carry their source path as the following record.
func parseStatusZ(raw string) []StatusEntry {
	records := stringsutil.SplitNonEmpty(raw, "\x00")
	entries := make([]StatusEntry, 0, len(records))

	for i := 0; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			continue
		}
		entry := StatusEntry{
			Index:    record[0],
			Worktree: record[1],
			Path:     record[3:],
		}
		if (entry.Index == 'R' || entry.Index == 'C') && i+1 < len(records) {
			entry.OrigPath = records[i+1]
			i++
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

func formatStatus(entries []StatusEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

func statusPaths(entries []StatusEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return stringsutil.SortedUnique(paths)
}
