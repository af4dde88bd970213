// Package identity determines which repository the bootstrapper is operating
// on without operator input.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// RepositoryEnvVar is the variable the bulk-execution harness injects with the
// repository being processed, as "owner/name" or a bare name.
const RepositoryEnvVar = "REPOSITORY"

// ErrNoIdentity is returned by Chain.Resolve when no provider yields a name.
var ErrNoIdentity = errors.New("could not determine repository identity")

// Provider is one strategy for discovering the repository name.
// An empty name with a nil error means "no opinion"; the chain moves on.
type Provider interface {
	// Name identifies the strategy in logs and diagnostics.
	Name() string

	// Identify returns the raw identity (URL, owner/name, or bare name).
	Identify(ctx context.Context) (string, error)
}

// Resolution records which provider produced the identity.
type Resolution struct {
	Repository string `json:"repository"`
	Provider   string `json:"provider"`
	Raw        string `json:"raw"`
}

// Chain tries providers in order and returns the first non-empty result.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain returns a chain over providers. A nil logger is replaced with a
// no-op logger.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// NewDefaultChain returns the production chain rooted at dir:
// REPOSITORY env var, then the origin remote of the git checkout in dir,
// then the base name of dir.
func NewDefaultChain(logger *zap.Logger, dir string) *Chain {
	return NewChain(logger,
		NewEnvProvider(RepositoryEnvVar),
		NewGitRemoteProvider(dir),
		NewWorkingDirProvider(dir),
	)
}

// Providers returns the providers in evaluation order.
func (c *Chain) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// Resolve runs the chain. Provider errors are logged and skipped; only the
// exhaustion of all providers is an error.
func (c *Chain) Resolve(ctx context.Context) (Resolution, error) {
	for _, p := range c.providers {
		raw, err := p.Identify(ctx)
		if err != nil {
			c.logger.Debug("identity provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		name := Normalize(raw)
		if name == "" {
			c.logger.Debug("identity provider returned nothing", zap.String("provider", p.Name()))
			continue
		}
		c.logger.Debug("resolved repository identity",
			zap.String("provider", p.Name()),
			zap.String("raw", raw),
			zap.String("repository", name),
		)
		return Resolution{Repository: name, Provider: p.Name(), Raw: raw}, nil
	}
	return Resolution{}, ErrNoIdentity
}

// Normalize reduces a remote URL, "owner/name" slug, or bare name to the bare
// repository name. Trailing slashes and a ".git" suffix are removed.
//
//	git@github.com:acme/cineos.git      → cineos
//	https://github.com/acme/cineos.git  → cineos
//	acme/cineos                         → cineos
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, ".git")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// ---------------------------------------------------------------------------
// EnvProvider
// ---------------------------------------------------------------------------

// EnvProvider reads the identity from an environment variable.
type EnvProvider struct {
	key    string
	lookup func(string) (string, bool)
}

// NewEnvProvider returns a provider reading key from the process environment.
func NewEnvProvider(key string) *EnvProvider {
	return &EnvProvider{key: key, lookup: os.LookupEnv}
}

func (p *EnvProvider) Name() string { return "env:" + p.key }

func (p *EnvProvider) Identify(_ context.Context) (string, error) {
	v, _ := p.lookup(p.key)
	return v, nil
}

// ---------------------------------------------------------------------------
// GitRemoteProvider
// ---------------------------------------------------------------------------

// CommandRunner runs name with args in dir and returns its stdout.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner is the production CommandRunner backed by os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}

// GitRemoteProvider derives the identity from the origin remote URL of the
// git checkout in dir.
type GitRemoteProvider struct {
	dir    string
	remote string
	run    CommandRunner
}

// NewGitRemoteProvider returns a provider that shells out to git in dir.
func NewGitRemoteProvider(dir string) *GitRemoteProvider {
	return NewGitRemoteProviderWithRunner(dir, ExecRunner)
}

// NewGitRemoteProviderWithRunner returns a provider that uses run instead of
// os/exec. Pass a stub runner in tests.
func NewGitRemoteProviderWithRunner(dir string, run CommandRunner) *GitRemoteProvider {
	return &GitRemoteProvider{dir: dir, remote: "origin", run: run}
}

func (p *GitRemoteProvider) Name() string { return "git-remote:" + p.remote }

func (p *GitRemoteProvider) Identify(ctx context.Context) (string, error) {
	out, err := p.run(ctx, p.dir, "git", "remote", "get-url", p.remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ---------------------------------------------------------------------------
// WorkingDirProvider
// ---------------------------------------------------------------------------

// WorkingDirProvider uses the base name of a directory as the identity.
type WorkingDirProvider struct {
	dir string
}

// NewWorkingDirProvider returns a provider for dir. An empty dir means the
// process working directory.
func NewWorkingDirProvider(dir string) *WorkingDirProvider {
	return &WorkingDirProvider{dir: dir}
}

func (p *WorkingDirProvider) Name() string { return "working-dir" }

func (p *WorkingDirProvider) Identify(_ context.Context) (string, error) {
	dir := p.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." {
		return "", nil
	}
	return base, nil
}
