package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")
	t.Setenv("GITHUB_REPOSITORY", "octo/hello")
	t.Setenv("GITHUB_WORKSPACE", "/work")
	t.Setenv("RUNNER_DEBUG", "1")
	t.Setenv("GHCOMMIT_TELEMETRY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "tok", cfg.GitHubToken)
	require.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
	require.Equal(t, "octo/hello", cfg.Repository)
	require.Equal(t, "/work", cfg.Workdir)
	require.Equal(t, DefaultCommitMessage, cfg.CommitMessage)
	require.True(t, cfg.Verbose)
	require.False(t, cfg.TelemetryEnabled)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_WORKSPACE", "")
	t.Setenv("RUNNER_DEBUG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ".", cfg.Workdir)
	require.False(t, cfg.Verbose)
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("RUNNER_DEBUG", "sometimes")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "RUNNER_DEBUG")
}

func TestValidate(t *testing.T) {
	valid := Config{GitHubToken: "tok", Repository: "octo/hello"}
	require.NoError(t, valid.Validate())

	noToken := valid
	noToken.GitHubToken = ""
	require.ErrorContains(t, noToken.Validate(), "token")

	badRepo := valid
	badRepo.Repository = "octo"
	require.ErrorContains(t, badRepo.Validate(), "owner/repo")

	telemetry := valid
	telemetry.TelemetryEnabled = true
	require.ErrorContains(t, telemetry.Validate(), "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func TestSplitRepository(t *testing.T) {
	owner, repo, err := SplitRepository("octo/hello")
	require.NoError(t, err)
	require.Equal(t, "octo", owner)
	require.Equal(t, "hello", repo)

	for _, bad := range []string{"", "octo", "octo/", "/hello", "a/b/c"} {
		_, _, err := SplitRepository(bad)
		require.Error(t, err, bad)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MY_TOKEN", "from-env")

	path := filepath.Join(t.TempDir(), "ghcommit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
repository: octo/hello
token: ${MY_TOKEN}
branch: release
message: Release notes
files:
  - CHANGELOG.md
  - docs/
`), 0o644))

	cfg := Config{GitHubToken: "original", CommitMessage: DefaultCommitMessage, Workdir: "."}
	require.NoError(t, cfg.LoadFile(path))

	require.Equal(t, "octo/hello", cfg.Repository)
	require.Equal(t, "from-env", cfg.GitHubToken)
	require.Equal(t, "release", cfg.BranchName)
	require.Equal(t, "Release notes", cfg.CommitMessage)
	require.Equal(t, ".", cfg.Workdir)
	require.Equal(t, []string{"CHANGELOG.md", "docs/"}, cfg.Files)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := Config{}
	require.ErrorContains(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")), "failed to read")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files: [unterminated"), 0o644))
	require.ErrorContains(t, cfg.LoadFile(path), "failed to parse")
}
