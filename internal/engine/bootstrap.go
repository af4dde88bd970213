package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/identity"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/targets"
	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/workflow"
)

// Resolver identifies a repository.
type Resolver interface {
	Resolve(ctx context.Context) (identity.Resolution, error)
}

// WorkflowWriter writes the deploy workflow for a target under a root.
type WorkflowWriter interface {
	Write(root string, t models.DeploymentTarget) (string, error)
}

// BootstrapResult describes one bootstrap run.
type BootstrapResult struct {
	Identity identity.Resolution     `json:"identity"`
	Target   models.DeploymentTarget `json:"target"`

	// WorkflowPath is empty for a dry run.
	WorkflowPath string `json:"workflow_path,omitempty"`
}

// Bootstrapper resolves the current repository and writes its workflow.
type Bootstrapper struct {
	resolver Resolver
	registry *targets.Registry
	writer   WorkflowWriter
	logger   *zap.Logger
}

// NewBootstrapper wires the three stages of a bootstrap run.
func NewBootstrapper(resolver Resolver, registry *targets.Registry, writer WorkflowWriter, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{resolver: resolver, registry: registry, writer: writer, logger: logger}
}

// Resolve identifies the repository and looks up its target without writing
// anything.
func (b *Bootstrapper) Resolve(ctx context.Context) (*BootstrapResult, error) {
	id, err := b.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	target, err := b.registry.Lookup(id.Repository)
	if err != nil {
		return nil, fmt.Errorf("resolve deployment target (identity from %s): %w", id.Provider, err)
	}
	b.logger.Debug("resolved deployment target",
		zap.String("repository", id.Repository),
		zap.String("cluster", target.Cluster),
		zap.String("service", target.Service),
		zap.Bool("containerized", target.Containerized()),
	)
	return &BootstrapResult{Identity: id, Target: target}, nil
}

// Run resolves the repository and writes its workflow under root. Nothing is
// written when resolution fails.
func (b *Bootstrapper) Run(ctx context.Context, root string) (*BootstrapResult, error) {
	res, err := b.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	path, err := b.writer.Write(root, res.Target)
	if err != nil {
		return nil, err
	}
	res.WorkflowPath = path
	return res, nil
}

// NewDefaultBootstrapper returns a Bootstrapper rooted at dir using the
// default identity chain and the embedded workflow template.
func NewDefaultBootstrapper(dir string, registry *targets.Registry, logger *zap.Logger) *Bootstrapper {
	return NewBootstrapper(
		identity.NewDefaultChain(logger, dir),
		registry,
		workflow.NewEmitter(logger),
		logger,
	)
}
