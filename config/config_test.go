package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testPipeline struct {
	MaxChunkBytes  int64 `mapstructure:"max_chunk_bytes"`
	MaxConcurrency int   `mapstructure:"max_concurrency"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Pipeline      testPipeline `mapstructure:"pipeline"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	cfg := ServiceConfig{Name: "podscribe"}
	cfg.ApplyDefaults()
	if cfg.Environment != "development" {
		t.Errorf("expected 'development', got %q", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug=true for development")
	}
	if cfg.Logging.ServiceName != "podscribe" {
		t.Errorf("expected logging service name propagated, got %q", cfg.Logging.ServiceName)
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "production"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yaml := `
name: podscribe
environment: staging
pipeline:
  max_chunk_bytes: 1048576
  max_concurrency: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("podscribe", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "podscribe" || cfg.Environment != "staging" {
		t.Errorf("unexpected base config %+v", cfg.ServiceConfig)
	}
	if cfg.Pipeline.MaxChunkBytes != 1048576 || cfg.Pipeline.MaxConcurrency != 2 {
		t.Errorf("unexpected pipeline config %+v", cfg.Pipeline)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("pipeline:\n  max_concurrency: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PIPELINE_MAX_CONCURRENCY", "8")

	var cfg testConfig
	if err := LoadConfig("podscribe", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pipeline.MaxConcurrency != 8 {
		t.Errorf("expected env override 8, got %d", cfg.Pipeline.MaxConcurrency)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/podscribe/config.yml": true,
		"./config.yml":               true,
		".env":                       true,
	}}
	r := &Resolver{FileSystem: fs}
	files := r.ResolveFiles("podscribe", LoaderConfig{})
	if files.ConfigFile != "./cmd/podscribe/config.yml" {
		t.Errorf("expected cmd config first, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected .env, got %q", files.EnvFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("PIPELINE_MAX_CHUNK_BYTES")
	want := map[string]bool{
		"pipeline_max_chunk_bytes": true,
		"pipeline.max_chunk_bytes": true,
		"pipeline.max.chunk_bytes": true,
		"pipeline.max.chunk.bytes": true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %v", len(want), got)
	}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected variant %q", v)
		}
	}
}
