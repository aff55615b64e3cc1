package manifest

import (
	"os"
	"path/filepath"
	"sort"

	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/source"
)

// Detect classifies the fetched tree at root for spec and returns a manifest
// holding exactly one target
func Detect(root string, spec source.PackageSpec) (*PackageManifest, error) {
	target, err := detectTarget(root, spec)
	if err != nil {
		return nil, err
	}

	return &PackageManifest{
		Name:    spec.PackageName(),
		Version: DefaultVersion,
		Targets: []Target{target},
	}, nil
}

func detectTarget(root string, spec source.PackageSpec) (Target, error) {
	pkg := spec.Source()

	if spec.SubPath != "" {
		full := filepath.Join(root, filepath.FromSlash(spec.SubPath))
		info, err := os.Stat(full)
		if err != nil {
			return Target{}, copmerrors.NewDetectionError("%s:%s does not exist", pkg, spec.SubPath)
		}

		if !info.IsDir() {
			t, err := ClassifyFile(spec.SubPath)
			if err != nil {
				return Target{}, err
			}
			return Target{Type: t, Path: spec.SubPath}, nil
		}

		t := ClassifyDir(full)
		if t == TypeNone {
			return Target{}, copmerrors.NewDetectionError("No recognizable content found in %s:%s", pkg, spec.SubPath)
		}
		return Target{Type: t, Path: spec.SubPath}, nil
	}

	// The root wins over anything found in subdirectories
	if t := ClassifyDir(root); t != TypeNone {
		return Target{Type: t, Path: "."}, nil
	}

	candidates, err := scanSubdirs(root)
	if err != nil {
		return Target{}, copmerrors.NewPathError(root, "scan", err)
	}

	switch len(candidates) {
	case 0:
		return Target{}, copmerrors.NewDetectionError(
			"No recognizable targets found in %s\nTry specifying a sub-path: copm install %s:<subpath>", pkg, pkg)
	case 1:
		return candidates[0], nil
	}

	list := make([]copmerrors.Candidate, 0, len(candidates))
	for _, c := range candidates {
		list = append(list, copmerrors.Candidate{Path: c.Path, Type: string(c.Type)})
	}
	return Target{}, copmerrors.NewAmbiguousTargetsError(pkg, list)
}

// scanSubdirs classifies each immediate subdirectory of root, sorted by name
func scanSubdirs(root string) ([]Target, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var targets []Target
	for _, entry := range entries {
		if !IsDirEntry(root, entry) {
			continue
		}
		if t := ClassifyDir(filepath.Join(root, entry.Name())); t != TypeNone {
			targets = append(targets, Target{Type: t, Path: entry.Name()})
		}
	}
	return targets, nil
}
