// Package manifest classifies fetched repository content into installable
// artifact targets.
package manifest

import (
	copmerrors "github.com/samhoang/copm/internal/errors"
)

// ArtifactType is the closed set of things copm knows how to install
type ArtifactType string

const (
	TypeSkill                     ArtifactType = "skill"
	TypeCopilotInstructions       ArtifactType = "copilot-instructions"
	TypeCopilotCustomInstructions ArtifactType = "copilot-custom-instructions"
	TypeCopilotAgents             ArtifactType = "copilot-agents"
	TypeCopilotPrompts            ArtifactType = "copilot-prompts"
	TypeClaudeCommand             ArtifactType = "claude-command"
	// TypeLegacyClaudePlugin only exists in ledgers written by older releases
	TypeLegacyClaudePlugin ArtifactType = "claude-plugin"
)

// AllArtifactTypes returns every artifact type in display order
func AllArtifactTypes() []ArtifactType {
	return []ArtifactType{
		TypeSkill, TypeCopilotInstructions, TypeCopilotCustomInstructions,
		TypeCopilotAgents, TypeCopilotPrompts, TypeClaudeCommand, TypeLegacyClaudePlugin,
	}
}

// ParseArtifactType validates a type string read from a ledger
func ParseArtifactType(s string) (ArtifactType, error) {
	for _, t := range AllArtifactTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", copmerrors.NewUnsupportedTypeError(s)
}

// FileSuffix returns the file name pattern collected for the type, or "" for
// types installed as whole directories
func (t ArtifactType) FileSuffix() string {
	switch t {
	case TypeCopilotAgents:
		return AgentSuffix
	case TypeCopilotPrompts:
		return PromptSuffix
	case TypeCopilotCustomInstructions:
		return InstructionsSuffix
	case TypeClaudeCommand:
		return ".md"
	}
	return ""
}

// Well-known file names and suffixes
const (
	SkillFile               = "SKILL.md"
	CopilotInstructionsFile = "copilot-instructions.md"
	AgentSuffix             = ".agent.md"
	PromptSuffix            = ".prompt.md"
	InstructionsSuffix      = ".instructions.md"
)

// DefaultVersion is recorded for every package until tags are resolved
const DefaultVersion = "0.0.0"

// Target is one installable unit inside a fetched package
type Target struct {
	Type ArtifactType
	Path string // relative to the fetched root: ".", a directory or a file
}

// PackageManifest is the classification result for one package
type PackageManifest struct {
	Name    string
	Version string
	Targets []Target
}

// TargetTypes returns the type strings recorded in the ledger
func (m *PackageManifest) TargetTypes() []string {
	types := make([]string, 0, len(m.Targets))
	for _, t := range m.Targets {
		types = append(types, string(t.Type))
	}
	return types
}
