// Package internal wires the components of a run together.
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	gh "github.com/google/go-github/v72/github"
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"
	"golang.org/x/oauth2"

	"github.com/cchalm/ghcommit/internal/action"
	"github.com/cchalm/ghcommit/internal/changeset"
	"github.com/cchalm/ghcommit/internal/config"
	"github.com/cchalm/ghcommit/internal/git"
	"github.com/cchalm/ghcommit/internal/github"
	"github.com/cchalm/ghcommit/internal/telemetry"
	"github.com/cchalm/ghcommit/internal/transport"
)

// RegisterProviders registers the providers of a run with the DIG container. The configuration, console and
// telemetry provider are supplied by the entry point
func RegisterProviders(container *dig.Container, cfg config.Config, console action.Console, tp *telemetry.Provider) error {
	providers := []any{
		func() config.Config { return cfg },
		func() action.Console { return console },
		func() *telemetry.Provider { return tp },
		newHTTPClient,
		newRESTClient,
		github.NewClient,
		func(c *github.Client) git.RemoteAPI { return c },
		newGitRepo,
		func(r *git.GithubGitRepo) action.Repository { return r },
		newChangeSetBuilder,
		newRunner,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return err
		}
	}
	return nil
}

// BuildRunner resolves a Runner from a fresh container
func BuildRunner(cfg config.Config, console action.Console, tp *telemetry.Provider) (*action.Runner, error) {
	container := dig.New()
	if err := RegisterProviders(container, cfg, console, tp); err != nil {
		return nil, err
	}

	var runner *action.Runner
	if err := container.Invoke(func(r *action.Runner) {
		runner = r
	}); err != nil {
		return nil, err
	}
	return runner, nil
}

// newHTTPClient returns an authenticated client that waits out GitHub rate limits
func newHTTPClient(cfg config.Config) *http.Client {
	base := &http.Client{Transport: transport.WithRateLimiting(nil)}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.GitHubToken},
	)
	return oauth2.NewClient(ctx, tokenSource)
}

func newRESTClient(httpClient *http.Client, cfg config.Config) (*gh.Client, error) {
	return github.NewRESTClient(httpClient, cfg.APIURL)
}

func newGitRepo(api git.RemoteAPI, tp *telemetry.Provider) *git.GithubGitRepo {
	return git.NewGithubGitRepo(api, git.WithClientMutationID(tp.RunID()))
}

// newChangeSetBuilder reads files from the repository enclosing the configured working directory. Outside of a
// repository the working directory itself is the root and missing paths can't be classified as deletions
func newChangeSetBuilder(cfg config.Config) (action.ChangeSetBuilder, error) {
	workdir, err := filepath.Abs(cfg.Workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	tracker, root, err := changeset.OpenGitTracker(workdir)
	if errors.Is(err, changeset.ErrNotARepository) {
		logger.Warnf("%s is not inside a git repository, deleted files will not be detected", workdir)
		return changeset.NewBuilder(osfs.New(workdir, osfs.WithBoundOS()), nil), nil
	} else if err != nil {
		return nil, err
	}

	base, err := filepath.Rel(root, workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to locate working directory in repository: %w", err)
	}
	return changeset.NewBuilder(osfs.New(root, osfs.WithBoundOS()), tracker).WithBase(base), nil
}

func newRunner(builder action.ChangeSetBuilder, repo action.Repository, console action.Console, tp *telemetry.Provider) *action.Runner {
	return action.NewRunner(builder, repo, console, tp.Tracer())
}

// NewInputs assembles the parameters of a run from the configuration
func NewInputs(cfg config.Config) (action.Inputs, error) {
	owner, repo, err := cfg.OwnerRepo()
	if err != nil {
		return action.Inputs{}, err
	}
	return action.Inputs{
		Owner:      owner,
		Repo:       repo,
		Files:      cfg.Files,
		BranchName: cfg.BranchName,
		Message: git.CommitMessage{
			Headline: cfg.CommitMessage,
			Body:     cfg.CommitBody,
		},
	}, nil
}
