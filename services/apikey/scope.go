package apikey

import (
	"errors"
	"strings"
)

var ErrInvalidScope = errors.New("invalid scope")

// Scope is a capability granted to an API key, e.g. "read:upload". A
// wildcard scope such as "read:*" covers every scope sharing its prefix up to
// and including the separator.
type Scope struct {
	Action   string
	Resource string
	Wildcard bool
}

// ParseScope parses a scope string of the form "action", "action:resource",
// or "action:resource:*" (wildcard at the suffix boundary only).
func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t") {
		return Scope{}, ErrInvalidScope
	}

	if raw == "*" {
		return Scope{Wildcard: true}, nil
	}

	var scope Scope
	if strings.HasSuffix(raw, ":*") {
		scope.Wildcard = true
		raw = strings.TrimSuffix(raw, ":*")
	} else if strings.Contains(raw, "*") {
		// Wildcards anywhere but the suffix boundary are rejected.
		return Scope{}, ErrInvalidScope
	}

	scope.Action, scope.Resource, _ = strings.Cut(raw, ":")
	if scope.Action == "" {
		return Scope{}, ErrInvalidScope
	}

	return scope, nil
}

// ParseScopes parses a list, rejecting the whole list on the first invalid
// entry.
func ParseScopes(raw []string) ([]Scope, error) {
	scopes := make([]Scope, 0, len(raw))
	for _, entry := range raw {
		scope, err := ParseScope(entry)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

func (s Scope) String() string {
	var b strings.Builder
	b.WriteString(s.Action)
	if s.Resource != "" {
		b.WriteString(":")
		b.WriteString(s.Resource)
	}
	if s.Wildcard {
		if b.Len() > 0 {
			b.WriteString(":")
		}
		b.WriteString("*")
	}
	return b.String()
}

// Matches reports whether this granted scope covers the requested scope:
// exact match, or wildcard prefix match up to and including the separator.
func (s Scope) Matches(requested Scope) bool {
	if requested.Wildcard {
		// A wildcard can never be requested, only granted.
		return false
	}

	if !s.Wildcard {
		return s.String() == requested.String()
	}

	prefix := s.Action
	if s.Resource != "" {
		prefix += ":" + s.Resource
	}
	if prefix == "" {
		return true
	}

	return strings.HasPrefix(requested.String(), prefix+":")
}

// MatchAny applies deny-by-default matching: an empty grant list rejects
// everything.
func MatchAny(granted []Scope, requested Scope) bool {
	for _, g := range granted {
		if g.Matches(requested) {
			return true
		}
	}
	return false
}
