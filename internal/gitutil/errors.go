package gitutil

import (
	"fmt"
	"strings"

	"github.com/samzong/autocommit/internal/gitcmd"
)

// WrapGitError builds an error message that prefers git stderr output when present.
func WrapGitError(action string, result gitcmd.Result, err error) error {
	errMsg := strings.TrimSpace(string(result.Stderr))
	if errMsg == "" {
		errMsg = strings.TrimSpace(string(result.Stdout))
	}
	if errMsg != "" {
		return fmt.Errorf("%s: %s: %w", action, firstLines(errMsg, 5), err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		return strings.Join(lines[:n], "\n") + "\n..."
	}
	return s
}
