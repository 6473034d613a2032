package graph

import (
	"fmt"
	"strings"
)

// Verdict is the answer a [Schema] gives when asked whether a node or edge
// type may be inserted.
//
// Discouraged reduces to allowed: the mutation goes through and the graph
// logs a warning through its logger. Schemas that only answer yes or no can
// use [VerdictOf] to convert a boolean.
type Verdict int

const (
	// Allowed permits the mutation.
	Allowed Verdict = iota
	// Discouraged permits the mutation and logs a warning.
	Discouraged
	// Disallowed rejects the mutation.
	Disallowed
)

var verdictNames = map[Verdict]string{
	Allowed:     "allowed",
	Discouraged: "discouraged",
	Disallowed:  "disallowed",
}

// VerdictOf maps a plain boolean answer to a Verdict: true is Allowed,
// false is Disallowed.
func VerdictOf(ok bool) Verdict {
	if ok {
		return Allowed
	}
	return Disallowed
}

// IsAllowed reports whether the verdict lets a mutation proceed.
// Unknown values are treated as Disallowed.
func (v Verdict) IsAllowed() bool {
	return v == Allowed || v == Discouraged
}

// String returns the lowercase verdict name.
func (v Verdict) String() string {
	if s, ok := verdictNames[v]; ok {
		return s
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// MarshalText encodes the verdict as its name, so verdicts read naturally in
// JSON and TOML schema files.
func (v Verdict) MarshalText() ([]byte, error) {
	s, ok := verdictNames[v]
	if !ok {
		return nil, fmt.Errorf("unknown verdict %d", int(v))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a verdict name. Matching is case-insensitive.
func (v *Verdict) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for verdict, s := range verdictNames {
		if s == name {
			*v = verdict
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", string(text))
}
