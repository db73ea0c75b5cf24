// Package action runs a single commit: it builds the change set from local paths, resolves the target branch, and
// commits on top of the branch's head.
package action

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cchalm/ghcommit/internal/changeset"
	"github.com/cchalm/ghcommit/internal/git"
	"github.com/cchalm/ghcommit/internal/github"
)

// ChangeSetBuilder converts local paths into a change set
type ChangeSetBuilder interface {
	Build(ctx context.Context, paths []string) (changeset.ChangeSet, error)
}

// Repository resolves target branches and commits to them
type Repository interface {
	ResolveTarget(ctx context.Context, owner, repo, branchName string) (git.Target, error)
	CommitChanges(ctx context.Context, target git.Target, changes changeset.ChangeSet, message git.CommitMessage) (*github.CommitResult, error)
}

// Console groups and annotates run output for the host environment
type Console interface {
	Group(title string)
	EndGroup()
	Debugf(msg string, args ...any)
}

// Inputs are the parameters of one run
type Inputs struct {
	Owner      string
	Repo       string
	Files      []string
	BranchName string // empty selects the default branch
	Message    git.CommitMessage
}

// Runner sequences the stages of a run
type Runner struct {
	builder ChangeSetBuilder
	repo    Repository
	console Console
	tracer  trace.Tracer
}

// NewRunner creates a Runner. A nil tracer disables tracing
func NewRunner(builder ChangeSetBuilder, repo Repository, console Console, tracer trace.Tracer) *Runner {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Runner{
		builder: builder,
		repo:    repo,
		console: console,
		tracer:  tracer,
	}
}

// Run executes one run and reports how it ended. Every failure is fatal to the run; nothing is retried
func (r *Runner) Run(ctx context.Context, in Inputs) Outcome {
	ctx, span := r.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("repository.owner", in.Owner),
		attribute.String("repository.name", in.Repo),
		attribute.String("branch", in.BranchName),
		attribute.Int("files", len(in.Files)),
	))
	defer span.End()

	result, err := r.run(ctx, in)
	outcome := classify(result, err)

	span.SetAttributes(attribute.String("outcome", outcome.Kind.String()))
	if outcome.Kind == OutcomeFailed {
		span.SetStatus(codes.Error, outcome.Message())
	}
	return outcome
}

func (r *Runner) run(ctx context.Context, in Inputs) (*github.CommitResult, error) {
	if len(in.Files) == 0 {
		return nil, ErrFilesRequired
	}

	changes, err := r.builder.Build(ctx, in.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to collect file changes: %w", err)
	}
	if changes.IsEmpty() {
		return nil, ErrNoFileChanges
	}
	logger.Infof("Committing %d additions and %d deletions", len(changes.Additions), len(changes.Deletions))

	var target git.Target
	title := fmt.Sprintf("fetching repository info for owner: %s, repo: %s, branch: %s", in.Owner, in.Repo, in.BranchName)
	err = r.stage(ctx, title, "resolve-target", func(ctx context.Context) error {
		var err error
		target, err = r.repo.ResolveTarget(ctx, in.Owner, in.Repo, in.BranchName)
		return err
	})
	if err != nil {
		return nil, err
	}

	var result *github.CommitResult
	err = r.stage(ctx, "committing files", "commit", func(ctx context.Context) error {
		var err error
		result, err = r.repo.CommitChanges(ctx, target, changes, in.Message)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// stage runs fn inside an output group and a tracing span, and logs how long it took
func (r *Runner) stage(ctx context.Context, title string, spanName string, fn func(ctx context.Context) error) error {
	r.console.Group(title)
	defer r.console.EndGroup()

	ctx, span := r.tracer.Start(ctx, spanName)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	r.console.Debugf("time taken: %d ms", time.Since(start).Milliseconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
