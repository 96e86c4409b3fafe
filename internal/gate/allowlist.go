package gate

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// DefaultCommands is the set of command names the assistant may run out of the box.
var DefaultCommands = []string{
	"ls", "cd", "pwd", "cp", "mv", "rm", "mkdir", "find", "grep", "df", "du",
	"tree", "touch", "cat", "echo", "head", "tail", "chmod", "chown", "tar",
	"zip", "unzip", "wget", "curl", "nano", "vim", "ps", "kill", "top", "htop",
	"sudo", "whoami", "uptime", "man", "history", "alias", "uname", "mount",
	"umount",
}

// AllowList is an immutable set of command names. The zero value allows nothing.
type AllowList struct {
	names []string
	set   map[string]struct{}
}

// NewAllowList builds an AllowList from names, dropping blanks and duplicates
// while keeping the first-seen order.
func NewAllowList(names ...string) AllowList {
	cleaned := lo.Uniq(lo.Compact(lo.Map(names, func(name string, _ int) string {
		return strings.TrimSpace(name)
	})))

	return AllowList{
		names: cleaned,
		set: lo.SliceToMap(cleaned, func(name string) (string, struct{}) {
			return name, struct{}{}
		}),
	}
}

// DefaultAllowList returns an AllowList holding DefaultCommands.
func DefaultAllowList() AllowList {
	return NewAllowList(DefaultCommands...)
}

// Contains reports whether name is an exact member of the list.
func (a AllowList) Contains(name string) bool {
	_, ok := a.set[name]
	return ok
}

// Names returns the allowed names in declaration order.
func (a AllowList) Names() []string {
	return slices.Clone(a.names)
}

func (a AllowList) Len() int {
	return len(a.names)
}

// Suggest returns up to limit allowed names that fuzzy-match name, best first.
func (a AllowList) Suggest(name string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	matches := fuzzy.Find(name, a.names)
	suggestions := make([]string, 0, limit)
	for _, match := range matches {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}
