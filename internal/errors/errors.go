package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrInvalidSpec           = errors.New("invalid package spec")
	ErrDownloadFailed        = errors.New("download failed")
	ErrNoTargetsDetected     = errors.New("no targets detected")
	ErrAmbiguousTargets      = errors.New("multiple targets detected")
	ErrUnsupportedTargetType = errors.New("unsupported target type")
	ErrUnrecognizedFileType  = errors.New("unrecognized file type")
	ErrNotInstalled          = errors.New("package not installed")
	ErrConfigNotFound        = errors.New("copm.json not found: run 'copm init' first")
	ErrConfigExists          = errors.New("copm.json already exists")
)

// SpecError wraps errors with the offending package reference
type SpecError struct {
	Spec   string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("Invalid package spec '%s': %s", e.Spec, e.Reason)
}

func (e *SpecError) Unwrap() error {
	return ErrInvalidSpec
}

// NewSpecError creates a new spec error
func NewSpecError(spec, reason string) *SpecError {
	return &SpecError{Spec: spec, Reason: reason}
}

// DownloadError wraps the failure of every fetch transport for a repository
type DownloadError struct {
	Repo string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("Failed to download %s: %v", e.Repo, e.Err)
}

func (e *DownloadError) Unwrap() []error {
	return []error{ErrDownloadFailed, e.Err}
}

// NewDownloadError creates a new download error
func NewDownloadError(repo string, err error) *DownloadError {
	return &DownloadError{Repo: repo, Err: err}
}

// DetectionError reports that nothing installable was found
type DetectionError struct {
	Message string
}

func (e *DetectionError) Error() string {
	return e.Message
}

func (e *DetectionError) Unwrap() error {
	return ErrNoTargetsDetected
}

// NewDetectionError creates a new detection error
func NewDetectionError(format string, args ...any) *DetectionError {
	return &DetectionError{Message: fmt.Sprintf(format, args...)}
}

// Candidate is one classifiable location reported by AmbiguousTargetsError
type Candidate struct {
	Path string
	Type string
}

// AmbiguousTargetsError lists every candidate when a package holds more than
// one installable target
type AmbiguousTargetsError struct {
	Package    string
	Candidates []Candidate
}

func (e *AmbiguousTargetsError) Error() string {
	lines := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		lines = append(lines, fmt.Sprintf("  %-20s (%s)", c.Path, c.Type))
	}
	return fmt.Sprintf("Multiple targets detected in %s:\n%s\nUse: copm install %s:<subpath>",
		e.Package, strings.Join(lines, "\n"), e.Package)
}

func (e *AmbiguousTargetsError) Unwrap() error {
	return ErrAmbiguousTargets
}

// NewAmbiguousTargetsError creates a new ambiguity error
func NewAmbiguousTargetsError(pkg string, candidates []Candidate) *AmbiguousTargetsError {
	return &AmbiguousTargetsError{Package: pkg, Candidates: candidates}
}

// TypeError reports an artifact type or file that cannot be handled
type TypeError struct {
	Value string
	Err   error
}

func (e *TypeError) Error() string {
	switch e.Err {
	case ErrUnrecognizedFileType:
		return fmt.Sprintf("Unrecognized file type: %s", e.Value)
	default:
		return fmt.Sprintf("Unsupported target type: %s", e.Value)
	}
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// NewUnsupportedTypeError creates an error for an unknown artifact type
func NewUnsupportedTypeError(value string) *TypeError {
	return &TypeError{Value: value, Err: ErrUnsupportedTargetType}
}

// NewUnrecognizedFileError creates an error for a file no rule recognizes
func NewUnrecognizedFileError(path string) *TypeError {
	return &TypeError{Value: path, Err: ErrUnrecognizedFileType}
}

// NotInstalledError reports a package with nothing left to remove
type NotInstalledError struct {
	Package string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("Package not installed: %s", e.Package)
}

func (e *NotInstalledError) Unwrap() error {
	return ErrNotInstalled
}

// NewNotInstalledError creates a new not-installed error
func NewNotInstalledError(pkg string) *NotInstalledError {
	return &NotInstalledError{Package: pkg}
}

// PathError wraps errors with path context
type PathError struct {
	Path string
	Op   string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new path error
func NewPathError(path, op string, err error) *PathError {
	return &PathError{Path: path, Op: op, Err: err}
}
