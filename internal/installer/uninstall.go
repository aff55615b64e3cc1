package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/samhoang/copm/internal/config"
	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/logger"
	"github.com/samhoang/copm/internal/manifest"
)

// RemovePaths deletes exactly the given paths: directories recursively, files
// individually. Missing paths are skipped. It returns the paths removed.
func RemovePaths(paths []string) ([]string, error) {
	var removed []string
	var result *multierror.Error

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				result = multierror.Append(result, copmerrors.NewPathError(path, "stat", err))
			}
			continue
		}

		if info.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			result = multierror.Append(result, copmerrors.NewPathError(path, "remove", err))
			continue
		}
		removed = append(removed, path)
	}

	return removed, result.ErrorOrNil()
}

// RemoveByType applies each type's fixed removal rule for a package whose
// ledger record lists no files. Unknown types are skipped.
func (i *Installer) RemoveByType(ctx context.Context, name string, types []string) ([]string, error) {
	log := logger.G(ctx).WithField("package", name)

	var removed []string
	for _, s := range types {
		t, err := manifest.ParseArtifactType(s)
		if err != nil {
			log.WithField("type", s).Debug("skipping unknown type")
			continue
		}

		var paths []string
		switch t {
		case manifest.TypeLegacyClaudePlugin:
			dir, ok := i.dest.Resolve(t, i.scope, "", name)
			if !ok {
				continue
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return removed, copmerrors.NewNotInstalledError(name)
			}
			paths = []string{dir}

		case manifest.TypeCopilotInstructions:
			if file, ok := i.dest.Resolve(t, i.scope, "", ""); ok {
				paths = []string{file}
			}

		case manifest.TypeCopilotCustomInstructions:
			if dir, ok := i.dest.Resolve(t, i.scope, "", ""); ok {
				paths = instructionFiles(dir, name)
			}

		case manifest.TypeSkill:
			for _, tool := range config.AllTools() {
				if dir, ok := i.dest.Resolve(t, i.scope, tool, name); ok {
					paths = append(paths, dir)
				}
			}

		default:
			log.WithField("type", s).Debug("no removal rule for type")
			continue
		}

		gone, err := RemovePaths(paths)
		removed = append(removed, gone...)
		if err != nil {
			return removed, err
		}
	}

	return removed, nil
}

// instructionFiles returns <name>.instructions.md if present, otherwise every
// instructions file whose name starts with name
func instructionFiles(dir, name string) []string {
	exact := filepath.Join(dir, name+manifest.InstructionsSuffix)
	if fileExists(exact) {
		return []string{exact}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var matches []string
	for _, entry := range entries {
		n := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(n, name) && strings.HasSuffix(n, manifest.InstructionsSuffix) {
			matches = append(matches, filepath.Join(dir, n))
		}
	}
	return matches
}
