package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	// ProjectConfigFile is the project dependency manifest
	ProjectConfigFile = "copm.json"
	// LockFileName is the ledger of installed files
	LockFileName = "copm.lock"
	// SettingsFile holds user-level settings inside the copm dir
	SettingsFile = "config.toml"
)

// Paths holds all resolved paths for copm operations
type Paths struct {
	HomeDir    string // user home, root of global destinations
	CopmDir    string // ~/.copm (settings, global ledger)
	ProjectDir string // working directory, root of local destinations
}

// Scope selects between project-relative and home-relative destinations
type Scope int

const (
	ScopeLocal Scope = iota
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// ScopeFor maps a --global flag to a Scope
func ScopeFor(global bool) Scope {
	if global {
		return ScopeGlobal
	}
	return ScopeLocal
}

// ResolvePaths resolves all paths based on environment and defaults
func ResolvePaths() (*Paths, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.Wrap(err, "resolve home directory")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "resolve working directory")
	}

	// copm data directory (can be overridden)
	copmDir := os.Getenv("COPM_DIR")
	if copmDir == "" {
		copmDir = filepath.Join(home, ".copm")
	}

	return &Paths{
		HomeDir:    home,
		CopmDir:    copmDir,
		ProjectDir: cwd,
	}, nil
}

// ProjectConfigPath returns the path to copm.json
func (p *Paths) ProjectConfigPath() string {
	return filepath.Join(p.ProjectDir, ProjectConfigFile)
}

// LockPath returns the ledger for the scope: copm.lock in the project for
// local installs, ~/.copm/copm.lock for global ones
func (p *Paths) LockPath(scope Scope) string {
	if scope == ScopeGlobal {
		return filepath.Join(p.CopmDir, LockFileName)
	}
	return filepath.Join(p.ProjectDir, LockFileName)
}

// SettingsPath returns the path to config.toml
func (p *Paths) SettingsPath() string {
	return filepath.Join(p.CopmDir, SettingsFile)
}

// Destinations returns the destination resolver rooted at these paths
func (p *Paths) Destinations() *Destinations {
	return &Destinations{ProjectDir: p.ProjectDir, HomeDir: p.HomeDir}
}

// ProjectConfigExists checks if copm.json is present in the project
func (p *Paths) ProjectConfigExists() bool {
	info, err := os.Stat(p.ProjectConfigPath())
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// RelativeToProject renders path relative to the project dir with forward
// slashes, or returns it unchanged when it lies outside the project
func (p *Paths) RelativeToProject(path string) string {
	rel, err := filepath.Rel(p.ProjectDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// ResolveRecorded turns a path stored in a ledger back into an absolute path
func (p *Paths) ResolveRecorded(recorded string) string {
	if filepath.IsAbs(recorded) {
		return recorded
	}
	return filepath.Join(p.ProjectDir, filepath.FromSlash(recorded))
}
