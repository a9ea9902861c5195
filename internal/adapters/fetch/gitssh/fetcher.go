// Package gitssh fetches profile data from a file inside a git repository
// served over SSH. Checkouts are cached in the scratch directory and updated
// in place on later runs.
package gitssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/bnema/profile-sync/internal/lines"
	"github.com/bnema/profile-sync/internal/ports"
	"github.com/rs/zerolog"
)

const (
	clonesSubdir    = "git"
	defaultBranch   = "master"
	defaultFilename = "roles"
)

var ErrGitUnavailable = errors.New("git command unavailable")

type runFunc func(ctx context.Context, dir string, args ...string) (stdout string, stderr string, err error)

// Factory builds Fetchers for ssh:// git locations.
type Factory struct {
	logger zerolog.Logger
}

var _ ports.FetcherFactory = Factory{}

func NewFactory(logger zerolog.Logger) Factory {
	return Factory{logger: logger}
}

// CanHandle accepts SSH git repository addresses.
func (Factory) CanHandle(location string) bool {
	return strings.HasPrefix(location, "ssh://") && strings.HasSuffix(location, ".git")
}

// New prepares the clone cache under workPath. No network I/O happens here.
func (f Factory) New(workPath string) (ports.Fetcher, error) {
	clonePath := filepath.Join(workPath, clonesSubdir)
	if err := os.MkdirAll(clonePath, 0o700); err != nil {
		return nil, fmt.Errorf("create clone directory: %w", err)
	}

	return &Fetcher{clonePath: clonePath, run: runGitCommand, logger: f.logger}, nil
}

type Fetcher struct {
	clonePath string
	run       runFunc
	logger    zerolog.Logger
}

var _ ports.Fetcher = (*Fetcher)(nil)

// Fetch clones the repository on first use or pulls an existing checkout,
// switches to the requested branch, and streams the requested file's lines.
// Accepted params: branch (default "master"), filename (default "roles").
func (f *Fetcher) Fetch(ctx context.Context, location string, params map[string]string) (lines.Reader, error) {
	branch := defaultBranch
	filename := defaultFilename
	for key, value := range params {
		switch key {
		case "branch":
			branch = value
		case "filename":
			filename = value
		default:
			return nil, fmt.Errorf("fetch %s: unknown parameter %q", location, key)
		}
	}

	repoPath := filepath.Join(f.clonePath, repoName(location))

	if _, err := os.Stat(repoPath); err == nil {
		f.logger.Info().Str("location", location).Msg("Pulling existing checkout")
		if _, stderr, err := f.run(ctx, repoPath, "pull"); err != nil {
			return nil, formatError("pull", location, err, stderr)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		f.logger.Info().Str("location", location).Msg("Cloning repository")
		if _, stderr, err := f.run(ctx, f.clonePath, "clone", location); err != nil {
			return nil, formatError("clone", location, err, stderr)
		}
	} else {
		return nil, fmt.Errorf("stat checkout for %s: %w", location, err)
	}

	f.logger.Debug().Str("branch", branch).Msg("Switching branch")
	if _, stderr, err := f.run(ctx, repoPath, "switch", branch); err != nil {
		return nil, formatError("switch", location, err, stderr)
	}

	readPath := filepath.Join(repoPath, filename)
	f.logger.Debug().Str("path", readPath).Msg("Reading repository file")

	file, err := os.Open(readPath)
	if err != nil {
		return nil, fmt.Errorf("read %q from %s: %w", filename, location, err)
	}

	return lines.FromReadCloser(file), nil
}

// repoName derives the checkout directory name the same way git does for
// "git clone": the last path segment up to the first dot.
func repoName(location string) string {
	base := path.Base(location)
	name, _, _ := strings.Cut(base, ".")
	return name
}

func runGitCommand(ctx context.Context, dir string, args ...string) (string, string, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrGitUnavailable
		}
		return "", "", fmt.Errorf("locate git command: %w", err)
	}

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, location string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("git %s %s: %w", op, location, err)
	}

	return fmt.Errorf("git %s %s: %w: %s", op, location, err, stderr)
}
