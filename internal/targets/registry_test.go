package targets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pankaj-dahiya-devops/deploy-bootstrap/internal/models"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	return r
}

func TestDefault_KnownTargets(t *testing.T) {
	r := mustDefault(t)

	tests := []struct {
		name string
		want models.DeploymentTarget
	}{
		{
			name: "cineos",
			want: models.DeploymentTarget{
				AppName:  "cineos",
				Registry: "738605694078.dkr.ecr.us-east-1.amazonaws.com/cineos",
				Cluster:  "cineos-prod",
				Service:  "cineos-prod",
			},
		},
		{
			name: "cineos-api",
			want: models.DeploymentTarget{
				AppName:  "cineos-api",
				Registry: "738605694078.dkr.ecr.us-east-1.amazonaws.com/cineos-api",
				Cluster:  "cineos-prod",
				Service:  "cineos-api-prod",
			},
		},
		{
			name: "cineos-worker",
			want: models.DeploymentTarget{
				AppName:  "cineos-worker",
				Registry: "738605694078.dkr.ecr.us-east-1.amazonaws.com/cineos-worker",
				Cluster:  "cineos-prod",
				Service:  "cineos-worker-prod",
			},
		},
		{
			name: "cineos-admin",
			want: models.DeploymentTarget{
				AppName:  "cineos-admin",
				Registry: "738605694078.dkr.ecr.us-east-1.amazonaws.com/cineos-admin",
				Cluster:  "cineos-admin-prod",
				Service:  "cineos-admin-prod",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.name, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", tt.name, diff)
			}
			if !got.Containerized() {
				t.Errorf("Lookup(%q).Containerized() = false, want true", tt.name)
			}
		})
	}

	if r.Len() != 5 {
		t.Errorf("Len() = %d, want 5", r.Len())
	}
}

func TestDefault_StaticSiteUsesSentinel(t *testing.T) {
	r := mustDefault(t)

	got, err := r.Lookup("cineos-website")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	for field, v := range map[string]string{
		"registry": got.Registry,
		"cluster":  got.Cluster,
		"service":  got.Service,
	} {
		if v != models.NotApplicable {
			t.Errorf("%s = %q, want %q", field, v, models.NotApplicable)
		}
	}
	if got.Containerized() {
		t.Error("static site should not be containerized")
	}
}

func TestLookup_Unknown(t *testing.T) {
	r := mustDefault(t)

	_, err := r.Lookup("unknown-repo-xyz")
	if !errors.Is(err, ErrUnknownRepository) {
		t.Fatalf("expected ErrUnknownRepository, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown-repo-xyz") {
		t.Errorf("error should name the repository; got %q", err)
	}
}

func TestLookup_EmptyName(t *testing.T) {
	r := mustDefault(t)

	_, err := r.Lookup("")
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestLookup_IsExactMatch(t *testing.T) {
	r := mustDefault(t)

	for _, name := range []string{"CINEOS", " cineos", "cineos ", "owner/cineos", "cineo"} {
		if _, err := r.Lookup(name); !errors.Is(err, ErrUnknownRepository) {
			t.Errorf("Lookup(%q): expected ErrUnknownRepository, got %v", name, err)
		}
	}
}

func TestNames_Sorted(t *testing.T) {
	r := mustDefault(t)

	want := []string{"cineos", "cineos-admin", "cineos-api", "cineos-website", "cineos-worker"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RejectsDuplicateKeys(t *testing.T) {
	data := `
version: 1
targets:
  app:
    app_name: app
    registry: r
    cluster: c
    service: s
  app:
    app_name: app
    registry: r2
    cluster: c2
    service: s2
`
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatal("expected error for duplicate repository key")
	}
}

func TestParse_InvalidVersion(t *testing.T) {
	if _, err := Parse([]byte("version: 2\ntargets: {}\n")); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		target  models.DeploymentTarget
		wantErr string
	}{
		{
			name:    "missing cluster",
			target:  models.DeploymentTarget{AppName: "a", Registry: "r", Service: "s"},
			wantErr: "targets.x.cluster",
		},
		{
			name:    "partial sentinel",
			target:  models.DeploymentTarget{AppName: "a", Registry: "N/A", Cluster: "c", Service: "s"},
			wantErr: "all be N/A",
		},
		{
			name:    "sentinel app name",
			target:  models.DeploymentTarget{AppName: "N/A", Registry: "N/A", Cluster: "N/A", Service: "N/A"},
			wantErr: "app_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(map[string]models.DeploymentTarget{"x": tt.target})
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Empty(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty table")
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := map[string]models.DeploymentTarget{
		"app": {AppName: "app", Registry: "r", Cluster: "c", Service: "s"},
	}
	r, err := New(in)
	if err != nil {
		t.Fatal(err)
	}
	in["app"] = models.DeploymentTarget{AppName: "changed", Registry: "r", Cluster: "c", Service: "s"}

	got, _ := r.Lookup("app")
	if got.AppName != "app" {
		t.Errorf("registry was mutated through input map: %+v", got)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.yaml")
	content := `
version: 1
targets:
  docs:
    app_name: docs
    registry: N/A
    cluster: N/A
    service: N/A
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	if _, err := r.Lookup("cineos"); !errors.Is(err, ErrUnknownRepository) {
		t.Errorf("override table should replace the embedded one; got %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
