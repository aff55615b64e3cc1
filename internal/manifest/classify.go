package manifest

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	copmerrors "github.com/samhoang/copm/internal/errors"
)

// TypeNone is returned when no rule matches a directory
const TypeNone ArtifactType = ""

// dirRule pairs a predicate over a directory's immediate entries with the
// type it implies
type dirRule struct {
	Name  string
	Type  ArtifactType
	Match func(dir string, entries []os.DirEntry) bool
}

// dirRules are evaluated top to bottom; the first match wins
var dirRules = []dirRule{
	{Name: "skill", Type: TypeSkill, Match: hasFile(SkillFile)},
	{Name: "copilot-instructions", Type: TypeCopilotInstructions, Match: hasFile(CopilotInstructionsFile)},
	{Name: "agents", Type: TypeCopilotAgents, Match: hasFileMatching("*" + AgentSuffix)},
	{Name: "prompts", Type: TypeCopilotPrompts, Match: hasFileMatching("*" + PromptSuffix)},
	{Name: "custom-instructions", Type: TypeCopilotCustomInstructions, Match: hasFileMatching("*" + InstructionsSuffix)},
	{Name: "skill-collection", Type: TypeSkill, Match: hasSkillSubdir},
}

// fileRules map a single file onto a type by suffix, in priority order
var fileRules = []struct {
	Pattern string
	Type    ArtifactType
}{
	{"*" + PromptSuffix, TypeCopilotPrompts},
	{"*" + AgentSuffix, TypeCopilotAgents},
	{"*" + InstructionsSuffix, TypeCopilotCustomInstructions},
}

// ClassifyDir infers the artifact type of dir from its immediate entries.
// A missing or unreadable directory classifies as TypeNone.
func ClassifyDir(dir string) ArtifactType {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return TypeNone
	}
	for _, rule := range dirRules {
		if rule.Match(dir, entries) {
			return rule.Type
		}
	}
	return TypeNone
}

// ClassifyFile infers the artifact type of a single file from its name
func ClassifyFile(path string) (ArtifactType, error) {
	name := filepath.Base(path)
	for _, rule := range fileRules {
		if MatchName(rule.Pattern, name) {
			return rule.Type, nil
		}
	}
	return TypeNone, copmerrors.NewUnrecognizedFileError(path)
}

// MatchName reports whether a base name matches a glob pattern
func MatchName(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func hasFile(name string) func(string, []os.DirEntry) bool {
	return func(dir string, entries []os.DirEntry) bool {
		for _, entry := range entries {
			if entry.Name() == name && IsFileEntry(dir, entry) {
				return true
			}
		}
		return false
	}
}

func hasFileMatching(pattern string) func(string, []os.DirEntry) bool {
	return func(dir string, entries []os.DirEntry) bool {
		for _, entry := range entries {
			if MatchName(pattern, entry.Name()) && IsFileEntry(dir, entry) {
				return true
			}
		}
		return false
	}
}

func hasSkillSubdir(dir string, entries []os.DirEntry) bool {
	for _, entry := range entries {
		if !IsDirEntry(dir, entry) {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, entry.Name(), SkillFile))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// IsFileEntry reports whether entry in dir is a regular file, following
// symlinks so linked files classify like copies
func IsFileEntry(dir string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// IsDirEntry reports whether entry in dir is a directory, following symlinks
func IsDirEntry(dir string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}
