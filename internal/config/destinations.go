package config

import (
	"path/filepath"

	"github.com/samhoang/copm/internal/manifest"
)

// Tool names accepted in copm.json
const (
	ToolCopilot = "copilot"
	ToolClaude  = "claude"
)

// AllTools returns every tool copm can install skills for
func AllTools() []string {
	return []string{ToolCopilot, ToolClaude}
}

// Destinations maps artifact types onto fixed project and home locations.
// Tests substitute temporary roots for both.
type Destinations struct {
	ProjectDir string
	HomeDir    string
}

// Resolve returns where an artifact of type t belongs. The tool argument
// only matters for skills; name selects the per-package directory for skills
// and plugins and is ignored otherwise. An empty name yields the parent
// directory. ok is false when the type has no location in the scope.
func (d *Destinations) Resolve(t manifest.ArtifactType, scope Scope, tool, name string) (string, bool) {
	local := scope == ScopeLocal

	switch t {
	case manifest.TypeCopilotInstructions:
		if !local {
			return "", false
		}
		return filepath.Join(d.ProjectDir, ".github", "copilot-instructions.md"), true

	case manifest.TypeCopilotCustomInstructions:
		if local {
			return filepath.Join(d.ProjectDir, ".github", "instructions"), true
		}
		return filepath.Join(d.HomeDir, ".copilot", "instructions"), true

	case manifest.TypeCopilotAgents:
		if !local {
			return "", false
		}
		return filepath.Join(d.ProjectDir, ".github", "agents"), true

	case manifest.TypeCopilotPrompts:
		if !local {
			return "", false
		}
		return filepath.Join(d.ProjectDir, ".github", "prompts"), true

	case manifest.TypeClaudeCommand:
		if local {
			return filepath.Join(d.ProjectDir, ".claude", "commands"), true
		}
		return filepath.Join(d.HomeDir, ".claude", "commands"), true

	case manifest.TypeSkill:
		switch tool {
		case ToolCopilot:
			if local {
				return filepath.Join(d.ProjectDir, ".github", "skills", name), true
			}
			return filepath.Join(d.HomeDir, ".copilot", "skills", name), true
		case ToolClaude:
			if local {
				return filepath.Join(d.ProjectDir, ".claude", "skills", name), true
			}
			return filepath.Join(d.HomeDir, ".claude", "skills", name), true
		}
		return "", false

	case manifest.TypeLegacyClaudePlugin:
		if local {
			return filepath.Join(d.ProjectDir, ".claude", "plugins", name), true
		}
		return filepath.Join(d.HomeDir, ".claude", "plugins", "copm-packages", name), true
	}

	return "", false
}
