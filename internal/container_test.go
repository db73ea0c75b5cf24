package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/ghcommit/internal/changeset"
	"github.com/cchalm/ghcommit/internal/config"
	"github.com/cchalm/ghcommit/internal/logging"
	"github.com/cchalm/ghcommit/internal/telemetry"
)

func newTestProvider(t *testing.T) *telemetry.Provider {
	t.Helper()
	tp, err := telemetry.NewProvider(context.Background(), telemetry.Config{})
	require.NoError(t, err)
	return tp
}

func TestBuildRunner(t *testing.T) {
	cfg := config.Config{GitHubToken: "tok", Repository: "octo/hello", Workdir: t.TempDir()}

	runner, err := BuildRunner(cfg, logging.NewConsole(nil), newTestProvider(t))
	require.NoError(t, err)
	require.NotNil(t, runner)
}

func TestNewChangeSetBuilder_InsideRepository(t *testing.T) {
	root := t.TempDir()
	repo, err := gogit.PlainInit(root, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "site"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site", "old.html"), []byte("old"), 0o644))
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("site/old.html")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "site", "old.html")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site", "new.html"), []byte("new"), 0o644))

	builder, err := newChangeSetBuilder(config.Config{Workdir: filepath.Join(root, "site")})
	require.NoError(t, err)

	cs, err := builder.Build(context.Background(), []string{"new.html", "old.html"})
	require.NoError(t, err)
	require.Equal(t, []string{"site/new.html", "site/old.html"}, cs.Paths())
	require.Equal(t, []changeset.FileDeletion{{Path: "site/old.html"}}, cs.Deletions)
}

func TestNewChangeSetBuilder_OutsideRepository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))

	builder, err := newChangeSetBuilder(config.Config{Workdir: dir})
	require.NoError(t, err)

	cs, err := builder.Build(context.Background(), []string{"a.txt", "gone.txt"})
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, cs.Paths())
}

func TestNewInputs(t *testing.T) {
	in, err := NewInputs(config.Config{
		Repository:    "octo/hello",
		Files:         []string{"a.txt"},
		BranchName:    "main",
		CommitMessage: "headline",
		CommitBody:    "body",
	})
	require.NoError(t, err)
	require.Equal(t, "octo", in.Owner)
	require.Equal(t, "hello", in.Repo)
	require.Equal(t, []string{"a.txt"}, in.Files)
	require.Equal(t, "main", in.BranchName)
	require.Equal(t, "headline", in.Message.Headline)
	require.Equal(t, "body", in.Message.Body)

	_, err = NewInputs(config.Config{Repository: "nope"})
	require.Error(t, err)
}

func TestNewChangeSetBuilder_DoesNotReadOutsideRoot(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.env")
	require.NoError(t, os.WriteFile(secret, []byte("TOKEN=abc"), 0o600))

	root := t.TempDir()
	_, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	require.NoError(t, os.Symlink(secret, filepath.Join(root, "link")))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d"), 0o755))
	require.NoError(t, os.Symlink(secret, filepath.Join(root, "d", "inner")))

	builder, err := newChangeSetBuilder(config.Config{Workdir: root})
	require.NoError(t, err)

	for _, paths := range [][]string{{"link"}, {"d"}, {"d/inner"}} {
		cs, err := builder.Build(context.Background(), paths)
		require.NoError(t, err, paths)
		require.Empty(t, cs.Additions, paths)
	}
}
