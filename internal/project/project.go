// Package project runs copm operations against a project directory and
// keeps copm.json and the ledgers in step with what was installed.
package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/samhoang/copm/internal/config"
	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/installer"
	"github.com/samhoang/copm/internal/logger"
	"github.com/samhoang/copm/internal/manifest"
	"github.com/samhoang/copm/internal/source"
)

// Fetcher retrieves a repository snapshot
type Fetcher interface {
	Fetch(ctx context.Context, owner, repo, destDir string) (*source.FetchResult, error)
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// Manager performs install, uninstall and list for one project
type Manager struct {
	paths    *config.Paths
	settings *config.Settings
	fetcher  Fetcher
	out      io.Writer
}

// Option configures a Manager
type Option func(*Manager)

// WithFetcher replaces the network fetcher
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) {
		m.fetcher = f
	}
}

// WithOutput sets where progress is printed
func WithOutput(w io.Writer) Option {
	return func(m *Manager) {
		m.out = w
	}
}

// NewManager creates a manager; without WithFetcher it downloads from GitHub
// as configured in settings
func NewManager(paths *config.Paths, settings *config.Settings, opts ...Option) *Manager {
	m := &Manager{
		paths:    paths,
		settings: settings,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fetcher == nil {
		m.fetcher = DefaultFetcher(settings)
	}
	return m
}

// DefaultFetcher builds the tarball-then-git fetcher from settings
func DefaultFetcher(settings *config.Settings) *source.Fetcher {
	gh := settings.GitHub
	return source.NewFetcher(
		source.NewTarballTransport(gh.APIBaseURL, gh.Token, settings.Timeout()),
		source.NewGitTransport(gh.CloneBaseURL),
	)
}

// InstallResult describes one installed package
type InstallResult struct {
	Manifest  *manifest.PackageManifest
	Spec      source.PackageSpec
	Integrity source.Integrity
	Files     []string
}

// Init writes copm.json with the chosen tools
func (m *Manager) Init(tools []string) error {
	if m.paths.ProjectConfigExists() {
		return copmerrors.ErrConfigExists
	}

	cfg := config.DefaultProjectConfig()
	if len(tools) > 0 {
		cfg.Tools = tools
	}
	if err := cfg.Save(m.paths.ProjectConfigPath()); err != nil {
		return err
	}

	fmt.Fprintf(m.out, "%s Created %s\n", okMark, config.ProjectConfigFile)
	return nil
}

// Install fetches, classifies and installs one package reference
func (m *Manager) Install(ctx context.Context, ref string, global bool) (*InstallResult, error) {
	spec, err := source.ParseSpec(ref)
	if err != nil {
		return nil, err
	}

	scope := config.ScopeFor(global)
	ctx = logger.WithLogger(ctx, logger.G(ctx).WithField("package", spec.String()))

	var projectCfg *config.ProjectConfig
	tools := m.settings.DefaultTools
	if m.paths.ProjectConfigExists() {
		if projectCfg, err = config.LoadProjectConfig(m.paths.ProjectConfigPath()); err != nil {
			return nil, err
		}
		tools = projectCfg.Tools
	}

	fmt.Fprintf(m.out, "Installing %s...\n", spec)

	tmpDir, err := os.MkdirTemp("", "copm-*")
	if err != nil {
		return nil, errors.Wrap(err, "create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	fetched, err := m.fetcher.Fetch(ctx, spec.Owner, spec.Repo, tmpDir)
	if err != nil {
		return nil, err
	}

	pkg, err := manifest.Detect(fetched.Root, spec)
	if err != nil {
		return nil, err
	}

	inst := installer.New(m.paths.Destinations(),
		installer.WithTools(tools),
		installer.WithGlobal(global),
	)

	var files []string
	for _, target := range pkg.Targets {
		written, err := inst.Install(ctx, fetched.Root, target, pkg.Name)
		if err != nil {
			return nil, err
		}
		if len(written) == 0 {
			fmt.Fprintf(m.out, "  %s %s has no %s destination, skipped\n", warnMark, target.Type, scope)
		}
		for _, path := range written {
			fmt.Fprintf(m.out, "  %s %s → %s\n", okMark, target.Type, m.display(path, scope))
		}
		if target.Type == manifest.TypeSkill {
			m.printSkillDescription(filepath.Join(fetched.Root, filepath.FromSlash(target.Path)))
		}
		files = append(files, written...)
	}

	result := &InstallResult{Manifest: pkg, Spec: spec, Integrity: fetched.Integrity, Files: files}

	if err := m.record(result, scope, projectCfg); err != nil {
		return nil, err
	}

	fmt.Fprintf(m.out, "%s Installed %s\n", okMark, pkg.Name)
	return result, nil
}

// record updates copm.json and the scope's ledger after an install
func (m *Manager) record(res *InstallResult, scope config.Scope, projectCfg *config.ProjectConfig) error {
	if scope == config.ScopeLocal && projectCfg == nil {
		return nil
	}
	if scope == config.ScopeGlobal && len(res.Files) == 0 {
		return nil
	}

	pkg := res.Manifest
	locked := config.LockedPackage{
		Name:    pkg.Name,
		Version: pkg.Version,
		Source: config.LockSource{
			Type:    "github",
			Repo:    res.Spec.Source(),
			SubPath: res.Spec.SubPath,
		},
		Integrity: res.Integrity.String(),
		Targets:   pkg.TargetTypes(),
	}
	if res.Integrity.Scheme == source.SchemeGit {
		locked.Source.Rev = res.Integrity.Value
	}
	for _, path := range res.Files {
		if scope == config.ScopeLocal {
			path = m.paths.RelativeToProject(path)
		}
		locked.InstalledFiles = append(locked.InstalledFiles, path)
	}

	if scope == config.ScopeLocal {
		projectCfg.AddDependency(pkg.Name, config.Dependency{
			Source:  res.Spec.Source(),
			Version: pkg.Version,
			SubPath: res.Spec.SubPath,
		})
		if err := projectCfg.Save(m.paths.ProjectConfigPath()); err != nil {
			return err
		}
	}

	lockPath := m.paths.LockPath(scope)
	lock, err := config.LoadLockfile(lockPath)
	if err != nil {
		return err
	}
	if prev, ok := lock.Find(pkg.Name); ok && upstreamChanged(prev.Integrity, res.Integrity) {
		fmt.Fprintf(m.out, "  %s updated from %s\n", okMark, prev.Integrity)
	}
	lock.Upsert(locked)
	return lock.Save(lockPath)
}

// InstallAll installs every dependency in copm.json in name order. Failures
// are reported and the remaining packages still install.
func (m *Manager) InstallAll(ctx context.Context, global bool) error {
	cfg, err := config.LoadProjectConfig(m.paths.ProjectConfigPath())
	if err != nil {
		return err
	}

	names := cfg.DependencyNames()
	if len(names) == 0 {
		fmt.Fprintf(m.out, "No dependencies in %s\n", config.ProjectConfigFile)
		return nil
	}

	var result *multierror.Error
	for _, name := range names {
		dep := cfg.Dependencies[name]
		ref := dep.Source
		if dep.SubPath != "" {
			ref += ":" + dep.SubPath
		}

		if _, err := m.Install(ctx, ref, global); err != nil {
			fmt.Fprintf(m.out, "  %s %s: %v\n", failMark, name, err)
			result = multierror.Append(result, errors.Wrapf(err, "install %s", name))
		}
	}

	failed := 0
	if result != nil {
		failed = len(result.Errors)
	}
	fmt.Fprintf(m.out, "\nInstalled %d/%d packages\n", len(names)-failed, len(names))
	return result.ErrorOrNil()
}

// Uninstall removes what the ledger recorded for name and forgets it
func (m *Manager) Uninstall(ctx context.Context, name string, global bool) ([]string, error) {
	scope := config.ScopeFor(global)
	lockPath := m.paths.LockPath(scope)

	lock, err := config.LoadLockfile(lockPath)
	if err != nil {
		return nil, err
	}

	var removed []string
	record, found := lock.Find(name)
	switch {
	case found && len(record.InstalledFiles) > 0:
		paths := make([]string, 0, len(record.InstalledFiles))
		for _, p := range record.InstalledFiles {
			paths = append(paths, m.paths.ResolveRecorded(p))
		}
		removed, err = installer.RemovePaths(paths)
	case found:
		inst := installer.New(m.paths.Destinations(), installer.WithGlobal(global))
		removed, err = inst.RemoveByType(ctx, name, record.Targets)
	}
	for _, path := range removed {
		fmt.Fprintf(m.out, "  %s removed %s\n", failMark, m.display(path, scope))
	}
	if err != nil {
		return removed, err
	}

	if found {
		lock.Remove(name)
		if err := lock.Save(lockPath); err != nil {
			return removed, err
		}
	}

	if scope == config.ScopeLocal && m.paths.ProjectConfigExists() {
		cfg, err := config.LoadProjectConfig(m.paths.ProjectConfigPath())
		if err != nil {
			return removed, err
		}
		if cfg.RemoveDependency(name) {
			if err := cfg.Save(m.paths.ProjectConfigPath()); err != nil {
				return removed, err
			}
		}
	}

	if !found {
		fmt.Fprintf(m.out, "%s %s is not installed\n", warnMark, name)
	} else {
		fmt.Fprintf(m.out, "%s Uninstalled %s\n", okMark, name)
	}
	return removed, nil
}

// List returns installed items in the scope grouped by type
func (m *Manager) List(global bool) ([]installer.Group, error) {
	return installer.NewScanner(m.paths.Destinations(), config.ScopeFor(global)).Scan()
}

// upstreamChanged reports whether a recorded fingerprint differs from a new one
// of the same scheme; fingerprints of different schemes are not comparable
func upstreamChanged(recorded string, current source.Integrity) bool {
	prev, ok := source.ParseIntegrity(recorded)
	if !ok || current.IsZero() {
		return false
	}
	return prev.Scheme == current.Scheme && prev.Value != current.Value
}

func (m *Manager) display(path string, scope config.Scope) string {
	if scope == config.ScopeLocal {
		return m.paths.RelativeToProject(path)
	}
	return path
}

func (m *Manager) printSkillDescription(dir string) {
	meta, err := manifest.ReadSkillMetadata(dir)
	if err != nil || meta.Description == "" {
		return
	}
	fmt.Fprintf(m.out, "    %s\n", meta.Description)
}
