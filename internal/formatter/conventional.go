package formatter

import (
	"regexp"
	"slices"
	"strings"
)

var subjectRegex = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]+)\))?(!)?: (\S.*)$`)

// Subject is the parsed first line of a Conventional Commits message.
type Subject struct {
	Type        string
	Scope       string
	Breaking    bool
	Description string
}

// ParseSubject parses "type(scope)!: description" from the first line of
// message. ok is false when the line does not have that shape.
func ParseSubject(message string) (Subject, bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	m := subjectRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Subject{}, false
	}
	return Subject{
		Type:        strings.ToLower(m[1]),
		Scope:       m[2],
		Breaking:    m[3] == "!",
		Description: m[4],
	}, true
}

// IsConventional reports whether message starts with one of CommitTypes.
func IsConventional(message string) bool {
	s, ok := ParseSubject(message)
	return ok && slices.Contains(CommitTypes, s.Type)
}
