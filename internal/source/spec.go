// Package source parses package references and fetches repository snapshots.
package source

import (
	"fmt"
	"strings"

	copmerrors "github.com/samhoang/copm/internal/errors"
)

// PackageSpec identifies a repository and an optional path inside it
type PackageSpec struct {
	Owner   string
	Repo    string
	SubPath string // empty when the whole repository is meant
}

// ParseSpec parses "owner/repo" or "owner/repo:sub/path"
func ParseSpec(input string) (PackageSpec, error) {
	repoPart, subPath, hasSub := strings.Cut(input, ":")

	owner, repo, ok := strings.Cut(repoPart, "/")
	if !ok {
		return PackageSpec{}, copmerrors.NewSpecError(input, "expected owner/repo")
	}
	if owner == "" || repo == "" {
		return PackageSpec{}, copmerrors.NewSpecError(input, "owner and repo must be non-empty")
	}
	if hasSub && subPath == "" {
		return PackageSpec{}, copmerrors.NewSpecError(input, "sub-path must be non-empty")
	}

	return PackageSpec{Owner: owner, Repo: repo, SubPath: subPath}, nil
}

// Source returns "owner/repo"
func (s PackageSpec) Source() string {
	return s.Owner + "/" + s.Repo
}

func (s PackageSpec) String() string {
	if s.SubPath == "" {
		return s.Source()
	}
	return fmt.Sprintf("%s:%s", s.Source(), s.SubPath)
}

// nameSuffixes are stripped from the last sub-path segment, first match only
var nameSuffixes = []string{".prompt.md", ".agent.md", ".instructions.md", ".md"}

// PackageName derives the installed name: the repo, or the repo joined with
// the last sub-path segment unless the repo already ends with it
func (s PackageSpec) PackageName() string {
	if s.SubPath == "" {
		return s.Repo
	}

	last := s.SubPath
	if i := strings.LastIndex(last, "/"); i >= 0 {
		last = last[i+1:]
	}
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(last, suffix) {
			last = strings.TrimSuffix(last, suffix)
			break
		}
	}

	if strings.HasSuffix(s.Repo, last) {
		return s.Repo
	}
	return s.Repo + "-" + last
}
