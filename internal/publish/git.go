package publish

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Git is the version-control surface the publisher needs.
type Git interface {
	Stage(ctx context.Context) error
	// Commit returns the combined command output even when it fails, so
	// callers can inspect it.
	Commit(ctx context.Context, message string) (string, error)
	Push(ctx context.Context) error
}

// ExecGit runs the git binary inside a working tree, relying on the tree's
// own remote and branch configuration.
type ExecGit struct {
	dir    string
	binary string
}

func NewExecGit(dir, binary string) *ExecGit {
	if binary == "" {
		binary = "git"
	}
	return &ExecGit{dir: dir, binary: binary}
}

func (g *ExecGit) Stage(ctx context.Context) error {
	_, err := g.run(ctx, "add", ".")
	return err
}

func (g *ExecGit) Commit(ctx context.Context, message string) (string, error) {
	return g.run(ctx, "commit", "-m", message)
}

func (g *ExecGit) Push(ctx context.Context) error {
	_, err := g.run(ctx, "push")
	return err
}

func (g *ExecGit) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = g.dir
	// The no-op commit is detected from git's English output.
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}

	return string(out), nil
}
