package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/samhoang/copm/internal/config"
	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/manifest"
)

func createTestFile(t *testing.T, base, path, content string) string {
	t.Helper()
	fullPath := filepath.Join(base, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return fullPath
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// testEnv returns a fetched-source root and a resolver rooted in temp dirs
func testEnv(t *testing.T) (src string, dest *config.Destinations) {
	t.Helper()
	return t.TempDir(), &config.Destinations{ProjectDir: t.TempDir(), HomeDir: t.TempDir()}
}

func TestInstallSkillForEachTool(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "SKILL.md", "---\nname: humanizer\n---\n")
	createTestFile(t, src, "scripts/run.sh", "echo hi")

	inst := New(dest, WithTools([]string{"copilot", "claude", "copilot"}))
	written, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "."}, "humanizer")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := []string{
		filepath.Join(dest.ProjectDir, ".github", "skills", "humanizer"),
		filepath.Join(dest.ProjectDir, ".claude", "skills", "humanizer"),
	}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}
	for _, dir := range want {
		if !exists(filepath.Join(dir, "scripts", "run.sh")) {
			t.Errorf("%s missing nested file", dir)
		}
	}
}

func TestInstallSkillReplacesWholesale(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "SKILL.md", "v2")

	stale := createTestFile(t, dest.ProjectDir, ".github/skills/humanizer/old.md", "stale")

	inst := New(dest)
	if _, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "."}, "humanizer"); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	if exists(stale) {
		t.Error("stale file should be removed by wholesale replace")
	}
	if exists(filepath.Join(dest.ProjectDir, ".github", "skills", ".humanizer.copm-old")) {
		t.Error("backup of the replaced skill should be discarded")
	}
	if got := readFile(t, filepath.Join(dest.ProjectDir, ".github", "skills", "humanizer", "SKILL.md")); got != "v2" {
		t.Errorf("SKILL.md = %q, want v2", got)
	}
}

func TestInstallSkillCollection(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "skills/review/SKILL.md", "r")
	createTestFile(t, src, "skills/planning/SKILL.md", "p")
	createTestFile(t, src, "skills/README.md", "not a skill")

	inst := New(dest, WithGlobal(true))
	written, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "skills"}, "skills")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := []string{
		filepath.Join(dest.HomeDir, ".copilot", "skills", "planning"),
		filepath.Join(dest.HomeDir, ".copilot", "skills", "review"),
	}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}
}

func TestInstallUnknownToolSkipped(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "SKILL.md", "x")

	inst := New(dest, WithTools([]string{"cursor"}))
	written, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "."}, "x")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if len(written) != 0 {
		t.Errorf("written = %v, want none", written)
	}
}

func TestInstallFileCollectionFiltersBySuffix(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "agents/architect.agent.md", "a")
	createTestFile(t, src, "agents/reviewer.agent.md", "b")
	createTestFile(t, src, "agents/README.md", "readme")
	createTestFile(t, src, "agents/nested/deep.agent.md", "deep")

	inst := New(dest)
	written, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeCopilotAgents, Path: "agents"}, "x")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	agentsDir := filepath.Join(dest.ProjectDir, ".github", "agents")
	want := []string{
		filepath.Join(agentsDir, "architect.agent.md"),
		filepath.Join(agentsDir, "reviewer.agent.md"),
	}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}
	if exists(filepath.Join(agentsDir, "README.md")) {
		t.Error("README.md should not be installed")
	}
}

func TestInstallSingleFileLeavesSiblings(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "prompts/update-llms.prompt.md", "new")
	createTestFile(t, src, "prompts/other.prompt.md", "other")
	sibling := createTestFile(t, dest.ProjectDir, ".github/prompts/mine.prompt.md", "mine")

	inst := New(dest)
	target := manifest.Target{Type: manifest.TypeCopilotPrompts, Path: "prompts/update-llms.prompt.md"}
	written, err := inst.Install(context.Background(), src, target, "x")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := filepath.Join(dest.ProjectDir, ".github", "prompts", "update-llms.prompt.md")
	if !reflect.DeepEqual(written, []string{want}) {
		t.Errorf("written = %v, want [%s]", written, want)
	}
	if exists(filepath.Join(dest.ProjectDir, ".github", "prompts", "other.prompt.md")) {
		t.Error("only the named file should be copied")
	}
	if readFile(t, sibling) != "mine" {
		t.Error("existing sibling must be untouched")
	}
}

func TestInstallOverwritesSameName(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "go.instructions.md", "new rules")
	existing := createTestFile(t, dest.ProjectDir, ".github/instructions/go.instructions.md", "old rules")

	inst := New(dest)
	if _, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeCopilotCustomInstructions, Path: "."}, "x"); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if got := readFile(t, existing); got != "new rules" {
		t.Errorf("content = %q, want overwritten", got)
	}
}

func TestInstallGlobalSkipsLocalOnlyTypes(t *testing.T) {
	tests := []struct {
		typ   manifest.ArtifactType
		files []string
	}{
		{manifest.TypeCopilotInstructions, []string{"copilot-instructions.md"}},
		{manifest.TypeCopilotAgents, []string{"a.agent.md"}},
		{manifest.TypeCopilotPrompts, []string{"a.prompt.md"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			src, dest := testEnv(t)
			for _, f := range tt.files {
				createTestFile(t, src, f, "x")
			}

			written, err := New(dest, WithGlobal(true)).Install(context.Background(), src, manifest.Target{Type: tt.typ, Path: "."}, "x")
			if err != nil {
				t.Fatalf("Install() error: %v", err)
			}
			if len(written) != 0 {
				t.Errorf("written = %v, want none", written)
			}
		})
	}
}

func TestInstallGlobalCustomInstructions(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "go.instructions.md", "x")

	written, err := New(dest, WithGlobal(true)).Install(context.Background(), src, manifest.Target{Type: manifest.TypeCopilotCustomInstructions, Path: "."}, "x")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	want := filepath.Join(dest.HomeDir, ".copilot", "instructions", "go.instructions.md")
	if !reflect.DeepEqual(written, []string{want}) {
		t.Errorf("written = %v, want [%s]", written, want)
	}
}

func TestInstallCopilotInstructions(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    string
		wantErr bool
	}{
		{"named file", map[string]string{"copilot-instructions.md": "named", "README.md": "readme"}, "named", false},
		{"single markdown file", map[string]string{"guide.md": "guide"}, "guide", false},
		{"ambiguous markdown", map[string]string{"a.md": "a", "b.md": "b"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dest := testEnv(t)
			for name, content := range tt.files {
				createTestFile(t, src, name, content)
			}

			written, err := New(dest).Install(context.Background(), src, manifest.Target{Type: manifest.TypeCopilotInstructions, Path: "."}, "x")
			if tt.wantErr {
				if err == nil {
					t.Error("Install() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("Install() error: %v", err)
			}

			file := filepath.Join(dest.ProjectDir, ".github", "copilot-instructions.md")
			if !reflect.DeepEqual(written, []string{file}) {
				t.Errorf("written = %v", written)
			}
			if got := readFile(t, file); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstallClaudeCommands(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "commands/review.md", "r")
	createTestFile(t, src, "commands/notes.txt", "n")

	written, err := New(dest, WithGlobal(true)).Install(context.Background(), src, manifest.Target{Type: manifest.TypeClaudeCommand, Path: "commands"}, "x")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	want := filepath.Join(dest.HomeDir, ".claude", "commands", "review.md")
	if !reflect.DeepEqual(written, []string{want}) {
		t.Errorf("written = %v, want [%s]", written, want)
	}
}

func TestInstallLegacyPlugin(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "plugin.json", "{}")

	written, err := New(dest, WithGlobal(true)).Install(context.Background(), src, manifest.Target{Type: manifest.TypeLegacyClaudePlugin, Path: "."}, "tools")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	want := filepath.Join(dest.HomeDir, ".claude", "plugins", "copm-packages", "tools")
	if !reflect.DeepEqual(written, []string{want}) || !exists(filepath.Join(want, "plugin.json")) {
		t.Errorf("written = %v", written)
	}
}

func TestInstallUnsupportedType(t *testing.T) {
	src, dest := testEnv(t)
	_, err := New(dest).Install(context.Background(), src, manifest.Target{Type: "vscode-extension", Path: "."}, "x")
	if !errors.Is(err, copmerrors.ErrUnsupportedTargetType) {
		t.Errorf("Install() error = %v, want ErrUnsupportedTargetType", err)
	}
}

func TestInstallMissingSource(t *testing.T) {
	src, dest := testEnv(t)
	_, err := New(dest).Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "nope"}, "x")
	if err == nil {
		t.Error("Install() of a missing path should fail")
	}
}

func TestInstallFailureRollsBack(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "a.agent.md", "a")
	createTestFile(t, src, "b.agent.md", "b")

	// A directory where the second file should go makes its copy fail
	if err := os.MkdirAll(filepath.Join(dest.ProjectDir, ".github", "agents", "b.agent.md"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := New(dest).Install(context.Background(), src, manifest.Target{Type: manifest.TypeCopilotAgents, Path: "."}, "x")
	if err == nil {
		t.Fatal("Install() should fail")
	}
	if exists(filepath.Join(dest.ProjectDir, ".github", "agents", "a.agent.md")) {
		t.Error("file written before the failure should be rolled back")
	}
}

func TestInstallSkillFailureRestoresReplaced(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "SKILL.md", "v2")
	previous := createTestFile(t, dest.ProjectDir, ".github/skills/humanizer/SKILL.md", "v1")

	// A file where the claude skills dir belongs makes the second tool fail
	createTestFile(t, dest.ProjectDir, ".claude/skills", "not a dir")

	inst := New(dest, WithTools([]string{"copilot", "claude"}))
	_, err := inst.Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "."}, "humanizer")
	if err == nil {
		t.Fatal("Install() should fail")
	}

	if got := readFile(t, previous); got != "v1" {
		t.Errorf("SKILL.md = %q, want the previous install restored", got)
	}
	if exists(filepath.Join(dest.ProjectDir, ".github", "skills", ".humanizer.copm-old")) {
		t.Error("backup should be moved back into place")
	}
}

func TestInstallSkillCollectionSymlinkedSubdirs(t *testing.T) {
	src, dest := testEnv(t)
	shared := t.TempDir()
	createTestFile(t, shared, "alpha/SKILL.md", "alpha")
	if err := os.Symlink(filepath.Join(shared, "alpha"), filepath.Join(src, "alpha")); err != nil {
		t.Fatal(err)
	}

	if got := manifest.ClassifyDir(src); got != manifest.TypeSkill {
		t.Fatalf("ClassifyDir() = %q, want skill", got)
	}

	written, err := New(dest).Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "."}, "pack")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := []string{filepath.Join(dest.ProjectDir, ".github", "skills", "alpha")}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}
	if got := readFile(t, filepath.Join(want[0], "SKILL.md")); got != "alpha" {
		t.Errorf("SKILL.md = %q", got)
	}
}

func TestInstallSkillSkipsSymlinkLoops(t *testing.T) {
	src, dest := testEnv(t)
	createTestFile(t, src, "SKILL.md", "x")
	createTestFile(t, src, "docs/guide.md", "guide")
	if err := os.Symlink(".", filepath.Join(src, "loop")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("missing", filepath.Join(src, "dangling")); err != nil {
		t.Fatal(err)
	}

	_, err := New(dest).Install(context.Background(), src, manifest.Target{Type: manifest.TypeSkill, Path: "."}, "humanizer")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	skillDir := filepath.Join(dest.ProjectDir, ".github", "skills", "humanizer")
	if got := readFile(t, filepath.Join(skillDir, "docs", "guide.md")); got != "guide" {
		t.Errorf("guide.md = %q", got)
	}
	if exists(filepath.Join(skillDir, "loop")) || exists(filepath.Join(skillDir, "dangling")) {
		t.Error("looping and dangling links should be skipped")
	}
}

func TestInstallFilesFollowsSymlinks(t *testing.T) {
	src, dest := testEnv(t)
	target := createTestFile(t, t.TempDir(), "architect.agent.md", "agent")
	if err := os.Symlink(target, filepath.Join(src, "architect.agent.md")); err != nil {
		t.Fatal(err)
	}

	written, err := New(dest).Install(context.Background(), src, manifest.Target{Type: manifest.TypeCopilotAgents, Path: "."}, "agents")
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if len(written) != 1 || readFile(t, written[0]) != "agent" {
		t.Errorf("written = %v", written)
	}
}
