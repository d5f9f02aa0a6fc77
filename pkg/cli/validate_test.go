package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/toolforge/pkg/cli"
)

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "toolforge.toml")
	content := `
[similarity]
dedup_threshold = 0.7
search_threshold = 0.35
search_limit = 25

[llm]
timeout = "20s"
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"toolforge", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_DefaultsWithoutFile(t *testing.T) {
	err := cli.Run(context.Background(), []string{"toolforge", "validate"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "toolforge.toml")
	content := `
[similarity]
dedup_threshold = 1.2
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"toolforge", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.toml")

	err := cli.Run(context.Background(), []string{"toolforge", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_EnvFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "toolforge.toml")
	gt.NoError(t, os.WriteFile(configPath, []byte("[similarity]\nsearch_limit = 500\n"), 0o600)).Required()

	envPath := filepath.Join(dir, "test.env")
	gt.NoError(t, os.WriteFile(envPath, []byte("TOOLFORGE_CONFIG="+configPath+"\n"), 0o600)).Required()
	t.Cleanup(func() { _ = os.Unsetenv("TOOLFORGE_CONFIG") })

	// The config named by the env file is invalid, so validation must fail
	err := cli.Run(context.Background(), []string{"toolforge", "--env-file", envPath, "validate"}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_MissingExplicitEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "absent.env")

	err := cli.Run(context.Background(), []string{"toolforge", "--env-file=" + envPath, "validate"}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_MigrateMemory(t *testing.T) {
	err := cli.Run(context.Background(), []string{"toolforge", "migrate", "--repository-backend", "memory"}, "test")
	gt.NoError(t, err)
}

func TestEnvFileFromArgs(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		path     string
		explicit bool
	}{
		{"default", []string{"toolforge", "serve"}, ".env", false},
		{"separate value", []string{"toolforge", "--env-file", "prod.env", "serve"}, "prod.env", true},
		{"inline value", []string{"toolforge", "--env-file=dev.env", "serve"}, "dev.env", true},
		{"after terminator", []string{"toolforge", "--", "--env-file=x.env"}, ".env", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path, explicit := cli.EnvFileFromArgs(tc.args)
			gt.Value(t, path).Equal(tc.path)
			gt.Value(t, explicit).Equal(tc.explicit)
		})
	}
}

func TestIndexConfigIsValid(t *testing.T) {
	cfg := cli.GetIndexConfig()
	gt.NoError(t, cfg.Validate())
	gt.A(t, cfg.Collections).Length(2)
}

func TestRun_MigrateFirestoreRequiresProject(t *testing.T) {
	err := cli.Run(context.Background(), []string{"toolforge", "migrate", "--repository-backend", "firestore"}, "test")
	gt.Value(t, err).NotNil()
}
