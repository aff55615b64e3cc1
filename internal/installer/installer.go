// Package installer copies classified targets to tool destinations and
// removes them again.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/samhoang/copm/internal/config"
	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/logger"
	"github.com/samhoang/copm/internal/manifest"
)

// DestinationResolver maps an artifact type, scope, tool and package name to
// an install location. ok is false when the type has no location in scope.
type DestinationResolver interface {
	Resolve(t manifest.ArtifactType, scope config.Scope, tool, name string) (path string, ok bool)
}

// Installer copies targets to their destinations
type Installer struct {
	dest  DestinationResolver
	tools []string
	scope config.Scope
}

// Option configures an Installer
type Option func(*Installer)

// WithTools sets the tools skills are installed for
func WithTools(tools []string) Option {
	return func(i *Installer) {
		i.tools = tools
	}
}

// WithGlobal selects home-relative destinations
func WithGlobal(global bool) Option {
	return func(i *Installer) {
		i.scope = config.ScopeFor(global)
	}
}

// New creates an installer; by default it targets copilot in the project
func New(dest DestinationResolver, opts ...Option) *Installer {
	i := &Installer{
		dest:  dest,
		tools: []string{config.ToolCopilot},
		scope: config.ScopeLocal,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install copies target from the fetched root and returns every path
// written. Paths created before a failure are removed again.
func (i *Installer) Install(ctx context.Context, root string, target manifest.Target, name string) ([]string, error) {
	src := filepath.Join(root, filepath.FromSlash(target.Path))
	info, err := os.Stat(src)
	if err != nil {
		return nil, copmerrors.NewPathError(src, "install", err)
	}

	log := logger.G(ctx).WithFields(logrus.Fields{
		"package": name,
		"type":    target.Type,
		"scope":   i.scope,
	})
	log.Debug("installing target")

	rb := NewRollback()
	var written []string

	switch target.Type {
	case manifest.TypeCopilotInstructions:
		written, err = i.installCopilotInstructions(ctx, src, info, rb)
	case manifest.TypeCopilotCustomInstructions, manifest.TypeCopilotAgents,
		manifest.TypeCopilotPrompts, manifest.TypeClaudeCommand:
		written, err = i.installFiles(ctx, target.Type, src, info, rb)
	case manifest.TypeSkill:
		written, err = i.installSkill(ctx, src, info, name, rb)
	case manifest.TypeLegacyClaudePlugin:
		written, err = i.installPlugin(src, name, rb)
	default:
		return nil, copmerrors.NewUnsupportedTypeError(string(target.Type))
	}

	if err != nil {
		if rbErr := rb.Execute(); rbErr != nil {
			log.WithError(rbErr).Warn("rollback incomplete")
		}
		return nil, err
	}
	if err := rb.Commit(); err != nil {
		log.WithError(err).Warn("failed to remove replaced copies")
	}

	if len(written) == 0 {
		log.Debug("no destination in scope")
	}
	return written, nil
}

func (i *Installer) installCopilotInstructions(ctx context.Context, src string, info os.FileInfo, rb *Rollback) ([]string, error) {
	dst, ok := i.dest.Resolve(manifest.TypeCopilotInstructions, i.scope, "", "")
	if !ok {
		return nil, nil
	}

	file := src
	if info.IsDir() {
		var err error
		if file, err = findInstructionsFile(src); err != nil {
			return nil, err
		}
	}

	if err := copyArtifactFile(ctx, file, dst, rb); err != nil {
		return nil, errors.Wrapf(err, "copy %s", filepath.Base(file))
	}
	return []string{dst}, nil
}

// findInstructionsFile picks copilot-instructions.md, or the only markdown
// file in dir
func findInstructionsFile(dir string) (string, error) {
	preferred := filepath.Join(dir, manifest.CopilotInstructionsFile)
	if info, err := os.Stat(preferred); err == nil && !info.IsDir() {
		return preferred, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", copmerrors.NewPathError(dir, "read", err)
	}

	var md []string
	for _, entry := range entries {
		if manifest.IsFileEntry(dir, entry) && strings.HasSuffix(entry.Name(), ".md") {
			md = append(md, filepath.Join(dir, entry.Name()))
		}
	}
	if len(md) != 1 {
		return "", fmt.Errorf("no %s found in %s", manifest.CopilotInstructionsFile, dir)
	}
	return md[0], nil
}

func (i *Installer) installFiles(ctx context.Context, t manifest.ArtifactType, src string, info os.FileInfo, rb *Rollback) ([]string, error) {
	dstDir, ok := i.dest.Resolve(t, i.scope, "", "")
	if !ok {
		return nil, nil
	}

	if !info.IsDir() {
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := copyArtifactFile(ctx, src, dst, rb); err != nil {
			return nil, errors.Wrapf(err, "copy %s", filepath.Base(src))
		}
		return []string{dst}, nil
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, copmerrors.NewPathError(src, "read", err)
	}

	pattern := "*" + t.FileSuffix()
	var written []string
	for _, entry := range entries {
		if !manifest.IsFileEntry(src, entry) || !manifest.MatchName(pattern, entry.Name()) {
			continue
		}
		dst := filepath.Join(dstDir, entry.Name())
		if err := copyArtifactFile(ctx, filepath.Join(src, entry.Name()), dst, rb); err != nil {
			return nil, errors.Wrapf(err, "copy %s", entry.Name())
		}
		written = append(written, dst)
	}
	return written, nil
}

func (i *Installer) installSkill(ctx context.Context, src string, info os.FileInfo, name string, rb *Rollback) ([]string, error) {
	skills := map[string]string{name: src}
	if info.IsDir() && !fileExists(filepath.Join(src, manifest.SkillFile)) {
		var err error
		if skills, err = collectSkills(src); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(skills))
	for n := range skills {
		names = append(names, n)
	}
	sort.Strings(names)

	var written []string
	seen := make(map[string]bool)
	for _, tool := range i.tools {
		if seen[tool] {
			continue
		}
		seen[tool] = true

		for _, skill := range names {
			dst, ok := i.dest.Resolve(manifest.TypeSkill, i.scope, tool, skill)
			if !ok {
				logger.G(ctx).WithField("tool", tool).Warn("unknown tool, skipping")
				break
			}
			if err := replaceDir(skills[skill], dst, rb); err != nil {
				return nil, errors.Wrapf(err, "install skill %s for %s", skill, tool)
			}
			written = append(written, dst)
		}
	}
	return written, nil
}

// collectSkills maps each subdirectory holding SKILL.md to its path
func collectSkills(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, copmerrors.NewPathError(dir, "read", err)
	}

	skills := make(map[string]string)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if manifest.IsDirEntry(dir, entry) && fileExists(filepath.Join(path, manifest.SkillFile)) {
			skills[entry.Name()] = path
		}
	}
	if len(skills) == 0 {
		return nil, copmerrors.NewDetectionError("No skills found in %s", dir)
	}
	return skills, nil
}

func (i *Installer) installPlugin(src, name string, rb *Rollback) ([]string, error) {
	dst, ok := i.dest.Resolve(manifest.TypeLegacyClaudePlugin, i.scope, "", name)
	if !ok {
		return nil, nil
	}
	if err := replaceDir(src, dst, rb); err != nil {
		return nil, errors.Wrapf(err, "install plugin %s", name)
	}
	return []string{dst}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
