// Package workflow renders and writes the CI workflow that tests an
// application repository and dispatches its deployment.
package workflow

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

// Path is the workflow location relative to the repository root.
const Path = ".github/workflows/deploy.yml"

// TaskType is the fixed task tag carried in every dispatch payload.
const TaskType = "deploy-service"

// InjectedKeys lists the env keys populated from the DeploymentTarget, in
// template order. Everything else in the workflow is fixed text.
var InjectedKeys = []string{"APP_NAME", "ECR_REPOSITORY", "ECS_CLUSTER", "ECS_SERVICE"}

// PayloadKeys lists the client_payload fields of the dispatch event.
var PayloadKeys = []string{
	"app_name",
	"ref",
	"environment",
	"task_type",
	"ecr_repository",
	"ecs_cluster",
	"ecs_service",
	"actor",
	"commit_message",
}

//go:embed deploy.yml.tmpl
var deployTemplate string

// safeValue matches values that can be emitted inside a single-quoted YAML
// scalar without escaping. ECR URIs, ECS names and the N/A sentinel all fit.
// Quoting keeps values such as "null", "true" or "123456" strings.
var safeValue = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/:@-]*$`)

// Emitter renders the deploy workflow for a DeploymentTarget.
// The template is parsed once; an Emitter is safe for concurrent use.
type Emitter struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// NewEmitter returns an Emitter using the embedded template.
func NewEmitter(logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	// [[ ]] delimiters leave GitHub's ${{ }} expressions untouched.
	tmpl := template.Must(template.New("deploy.yml").
		Delims("[[", "]]").
		Option("missingkey=error").
		Parse(deployTemplate))
	return &Emitter{tmpl: tmpl, logger: logger}
}

// Render returns the workflow document for t. The output is a pure function
// of t: rendering the same target twice yields identical bytes.
func (e *Emitter) Render(t models.DeploymentTarget) ([]byte, error) {
	values := map[string]string{
		"APP_NAME":       t.AppName,
		"ECR_REPOSITORY": t.Registry,
		"ECS_CLUSTER":    t.Cluster,
		"ECS_SERVICE":    t.Service,
	}
	for _, key := range InjectedKeys {
		if v := values[key]; !safeValue.MatchString(v) {
			return nil, fmt.Errorf("render workflow: %s value %q is not a plain identifier", key, v)
		}
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, t); err != nil {
		return nil, fmt.Errorf("render workflow: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the workflow for t and writes it to Path under root,
// creating intermediate directories. An existing file is replaced without
// comparison. The content is written to a temporary file in the same
// directory and renamed into place, so a failed write never leaves a
// truncated workflow behind.
//
// Returns the absolute path of the written file.
func (e *Emitter) Write(root string, t models.DeploymentTarget) (string, error) {
	data, err := e.Render(t)
	if err != nil {
		return "", err
	}

	dest, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(Path)))
	if err != nil {
		return "", fmt.Errorf("resolve workflow path: %w", err)
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workflow directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".deploy.yml.*")
	if err != nil {
		return "", fmt.Errorf("create temp workflow file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("write workflow file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close workflow file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod workflow file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		cleanup()
		return "", fmt.Errorf("replace workflow file %q: %w", dest, err)
	}

	e.logger.Info("wrote workflow",
		zap.String("path", dest),
		zap.String("app", t.AppName),
		zap.Int("bytes", len(data)),
	)
	return dest, nil
}
