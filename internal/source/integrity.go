package source

import "strings"

// IntegrityScheme tags how a fingerprint was produced
type IntegrityScheme string

const (
	// SchemeSHA256 is a digest over the downloaded archive bytes
	SchemeSHA256 IntegrityScheme = "sha256"
	// SchemeGit is the revision id of a shallow clone
	SchemeGit IntegrityScheme = "git"
)

// Integrity is a tagged fingerprint; values of different schemes never compare equal
type Integrity struct {
	Scheme IntegrityScheme
	Value  string
}

// String renders the ledger form, e.g. "sha256-<hex>" or "git-<rev>"
func (i Integrity) String() string {
	if i.Scheme == "" {
		return ""
	}
	return string(i.Scheme) + "-" + i.Value
}

// IsZero reports whether no fingerprint is present
func (i Integrity) IsZero() bool {
	return i.Scheme == "" && i.Value == ""
}

// ParseIntegrity reads the ledger form back; unknown schemes yield false
func ParseIntegrity(s string) (Integrity, bool) {
	scheme, value, ok := strings.Cut(s, "-")
	if !ok || value == "" {
		return Integrity{}, false
	}
	switch IntegrityScheme(scheme) {
	case SchemeSHA256, SchemeGit:
		return Integrity{Scheme: IntegrityScheme(scheme), Value: value}, true
	}
	return Integrity{}, false
}
