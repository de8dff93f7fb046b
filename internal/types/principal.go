package types

import "strings"

// Principal is the authenticated identity for one request: a subject ID plus
// the role and scope sets carried by its credential. It replaces the open-ended
// claims bag of the upstream identity providers with a fixed shape; aliasing
// claim keys (sub vs nameidentifier, scope vs scp) are collapsed to these
// canonical fields at the parse boundary.
//
// Roles and Scopes are canonical sets: trimmed, empty entries dropped, and
// deduplicated case-insensitively (first casing wins). Membership checks are
// case-insensitive. A nil *Principal means the request is anonymous.
type Principal struct {
	UserID string
	Roles  []string
	Scopes []string
	Email  string
}

// HasScope reports whether the principal carries the given scope,
// compared case-insensitively.
func (p *Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if strings.EqualFold(s, scope) {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal's role set intersects the given
// roles, compared case-insensitively.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range p.Roles {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// NormalizeSet canonicalizes a list of role or scope entries: each entry is
// trimmed, empty entries are dropped, and duplicates are removed
// case-insensitively, keeping the casing of the first occurrence.
func NormalizeSet(entries []string) []string {
	out := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
