package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/samhoang/copm/internal/logger"
)

// GitTransport shallow-clones a repository with the git client
type GitTransport struct {
	baseURL string
}

// NewGitTransport creates a transport cloning from baseURL/owner/repo.git
func NewGitTransport(baseURL string) *GitTransport {
	return &GitTransport{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p *GitTransport) Type() string {
	return "git"
}

func (p *GitTransport) Fetch(ctx context.Context, owner, repo, destDir string) (*FetchResult, error) {
	url := fmt.Sprintf("%s/%s/%s.git", p.baseURL, owner, repo)
	repoDir := filepath.Join(destDir, repo)

	logger.G(ctx).WithField("url", url).Debug("cloning")

	if _, err := runGit(ctx, "clone", "--depth", "1", url, repoDir); err != nil {
		return nil, &SourceError{Transport: "git", Op: "clone", Source: url, Err: err}
	}

	rev, err := runGit(ctx, "-C", repoDir, "rev-parse", "HEAD")
	if err != nil {
		return nil, &SourceError{Transport: "git", Op: "rev-parse", Source: url, Err: err}
	}

	return &FetchResult{
		Root:      repoDir,
		Integrity: Integrity{Scheme: SchemeGit, Value: rev},
	}, nil
}

// runGit executes git and returns trimmed stdout; stderr is folded into the error
func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
