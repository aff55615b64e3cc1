package installer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samhoang/copm/internal/config"
	"github.com/samhoang/copm/internal/manifest"
)

// Item is one installed artifact found on disk
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Group collects installed items of one type (and tool, for skills)
type Group struct {
	Label string                `json:"label" yaml:"label"`
	Type  manifest.ArtifactType `json:"type" yaml:"type"`
	Tool  string                `json:"tool,omitempty" yaml:"tool,omitempty"`
	Items []Item                `json:"items" yaml:"items"`
}

// Scanner scans install destinations for installed items
type Scanner struct {
	dest  DestinationResolver
	scope config.Scope
}

// NewScanner creates a new Scanner
func NewScanner(dest DestinationResolver, scope config.Scope) *Scanner {
	return &Scanner{dest: dest, scope: scope}
}

// Scan returns every non-empty group in display order
func (s *Scanner) Scan() ([]Group, error) {
	var groups []Group

	add := func(g Group, err error) error {
		if err != nil {
			return err
		}
		if len(g.Items) > 0 {
			groups = append(groups, g)
		}
		return nil
	}

	for _, tool := range config.AllTools() {
		if err := add(s.scanSkills(tool)); err != nil {
			return nil, err
		}
	}

	if err := add(s.scanInstructions()); err != nil {
		return nil, err
	}

	for _, spec := range []struct {
		label string
		typ   manifest.ArtifactType
	}{
		{"Custom instructions", manifest.TypeCopilotCustomInstructions},
		{"Agents", manifest.TypeCopilotAgents},
		{"Prompts", manifest.TypeCopilotPrompts},
		{"Claude commands", manifest.TypeClaudeCommand},
	} {
		if err := add(s.scanFiles(spec.label, spec.typ)); err != nil {
			return nil, err
		}
	}

	if err := add(s.scanPlugins()); err != nil {
		return nil, err
	}

	return groups, nil
}

func (s *Scanner) scanSkills(tool string) (Group, error) {
	g := Group{Label: "Skills (" + tool + ")", Type: manifest.TypeSkill, Tool: tool}

	dir, ok := s.dest.Resolve(manifest.TypeSkill, s.scope, tool, "")
	if !ok {
		return g, nil
	}

	entries, err := readDirIfExists(dir)
	if err != nil {
		return g, err
	}
	for _, entry := range entries {
		if !manifest.IsDirEntry(dir, entry) || isHidden(entry.Name()) {
			continue
		}
		item := Item{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())}
		if meta, err := manifest.ReadSkillMetadata(item.Path); err == nil {
			item.Description = meta.Description
		}
		g.Items = append(g.Items, item)
	}
	return g, nil
}

func (s *Scanner) scanInstructions() (Group, error) {
	g := Group{Label: "Copilot instructions", Type: manifest.TypeCopilotInstructions}

	file, ok := s.dest.Resolve(manifest.TypeCopilotInstructions, s.scope, "", "")
	if ok && fileExists(file) {
		g.Items = append(g.Items, Item{Name: filepath.Base(file), Path: file})
	}
	return g, nil
}

func (s *Scanner) scanFiles(label string, t manifest.ArtifactType) (Group, error) {
	g := Group{Label: label, Type: t}

	dir, ok := s.dest.Resolve(t, s.scope, "", "")
	if !ok {
		return g, nil
	}

	entries, err := readDirIfExists(dir)
	if err != nil {
		return g, err
	}

	suffix := t.FileSuffix()
	for _, entry := range entries {
		name := entry.Name()
		if !manifest.IsFileEntry(dir, entry) || isHidden(name) || !strings.HasSuffix(name, suffix) {
			continue
		}
		g.Items = append(g.Items, Item{
			Name: strings.TrimSuffix(name, suffix),
			Path: filepath.Join(dir, name),
		})
	}
	return g, nil
}

func (s *Scanner) scanPlugins() (Group, error) {
	g := Group{Label: "Claude plugins (legacy)", Type: manifest.TypeLegacyClaudePlugin}

	dir, ok := s.dest.Resolve(manifest.TypeLegacyClaudePlugin, s.scope, "", "")
	if !ok {
		return g, nil
	}

	entries, err := readDirIfExists(dir)
	if err != nil {
		return g, err
	}
	for _, entry := range entries {
		if manifest.IsDirEntry(dir, entry) && !isHidden(entry.Name()) {
			g.Items = append(g.Items, Item{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())})
		}
	}
	return g, nil
}

// readDirIfExists lists dir sorted by name, treating a missing dir as empty
func readDirIfExists(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

func isHidden(name string) bool {
	return name != "" && name[0] == '.'
}
