package model

import (
	"fmt"
	"strings"
)

const wildcardSuffix = "/**"

// PathPattern is either a literal path or a literal prefix followed by "/**".
type PathPattern struct {
	raw      string
	prefix   string
	wildcard bool
}

// ParsePathPattern validates a pattern. "**" is only allowed as the final segment.
func ParsePathPattern(raw string) (PathPattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return PathPattern{}, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, raw)
	}

	prefix, wildcard := strings.CutSuffix(raw, wildcardSuffix)

	if strings.Contains(prefix, "*") {
		return PathPattern{}, fmt.Errorf("%w: %q has a wildcard outside the final segment", ErrInvalidPattern, raw)
	}

	if !wildcard && len(prefix) > 1 {
		prefix = strings.TrimSuffix(prefix, "/")
	}

	return PathPattern{raw: raw, prefix: prefix, wildcard: wildcard}, nil
}

// MustParsePathPattern is ParsePathPattern for static tables.
func MustParsePathPattern(raw string) PathPattern {
	pattern, err := ParsePathPattern(raw)
	if err != nil {
		panic(err)
	}

	return pattern
}

func (p PathPattern) String() string {
	return p.raw
}

// Prefix is the literal part of the pattern.
func (p PathPattern) Prefix() string {
	return p.prefix
}

func (p PathPattern) IsWildcard() bool {
	return p.wildcard
}

// Matches reports whether path is covered by the pattern. A wildcard covers
// its bare prefix and everything below it on a segment boundary.
func (p PathPattern) Matches(path string) bool {
	if !p.wildcard {
		return path == p.prefix
	}

	if p.prefix == "" {
		return true
	}

	rest, ok := strings.CutPrefix(path, p.prefix)

	return ok && (rest == "" || strings.HasPrefix(rest, "/"))
}

// IsCanonicalPath reports whether a decoded request path is already in its
// normalized form: absolute, without dot segments, empty segments or
// backslashes. A single trailing slash is allowed.
func IsCanonicalPath(path string) bool {
	if !strings.HasPrefix(path, "/") || strings.ContainsAny(path, "\\\x00") {
		return false
	}

	segments := strings.Split(path[1:], "/")

	for i, segment := range segments {
		switch segment {
		case ".", "..":
			return false
		case "":
			if i != len(segments)-1 {
				return false
			}
		}
	}

	return true
}
