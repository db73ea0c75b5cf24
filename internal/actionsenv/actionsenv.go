// Package actionsenv adapts a run to the GitHub Actions runner: it reads the step's inputs and reports the outcome
// through step outputs, annotations and the exit code.
package actionsenv

import (
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/cchalm/ghcommit/internal/action"
	"github.com/cchalm/ghcommit/internal/config"
)

// Step output names
const (
	OutputCommitSHA = "commit-sha"
	OutputCommitOID = "commit-oid"
	OutputCommitURL = "commit-url"
	OutputCommitted = "committed"
)

// Environment is the GitHub Actions runner a step executes in
type Environment struct {
	action *githubactions.Action
	getenv func(string) string
}

// New creates an Environment. A nil getenv reads the process environment and a nil writer writes to stdout
func New(getenv func(string) string, w io.Writer) *Environment {
	if getenv == nil {
		getenv = os.Getenv
	}
	if w == nil {
		w = os.Stdout
	}
	return &Environment{
		action: githubactions.New(githubactions.WithGetenv(getenv), githubactions.WithWriter(w)),
		getenv: getenv,
	}
}

// Config overlays the step's inputs on top of base
func (e *Environment) Config(base config.Config) config.Config {
	cfg := base
	cfg.Files = multiline(e.action.GetInput("files"))
	cfg.BranchName = e.action.GetInput("branch-name")
	if msg := e.action.GetInput("commit-message"); msg != "" {
		cfg.CommitMessage = msg
	}
	cfg.CommitBody = e.action.GetInput("commit-body")
	if token := e.action.GetInput("token"); token != "" {
		cfg.GitHubToken = token
	}
	if workdir := e.action.GetInput("workdir"); workdir != "" {
		cfg.Workdir = workdir
	}
	if repo := e.getenv("GITHUB_REPOSITORY"); repo != "" {
		cfg.Repository = repo
	}
	return cfg
}

// multiline splits a multi-line input into its non-blank lines
func multiline(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Mask prevents a secret from appearing in the step's log
func (e *Environment) Mask(secret string) {
	if secret != "" {
		e.action.AddMask(secret)
	}
}

func (e *Environment) Group(title string) {
	e.action.Group(title)
}

func (e *Environment) EndGroup() {
	e.action.EndGroup()
}

func (e *Environment) Debugf(msg string, args ...any) {
	e.action.Debugf(msg, args...)
}

// Report publishes the outcome of a run and returns the process exit code
func (e *Environment) Report(outcome action.Outcome) int {
	switch outcome.Kind {
	case action.OutcomeCommitted:
		e.action.SetOutput(OutputCommitted, "true")
		if outcome.Commit != nil {
			e.action.SetOutput(OutputCommitSHA, outcome.Commit.ID)
			e.action.SetOutput(OutputCommitOID, outcome.Commit.OID)
			e.action.SetOutput(OutputCommitURL, outcome.Commit.URL)
		}
		e.action.Infof("Committed %s", outcome.CommitID())
		return 0
	case action.OutcomeNoChanges:
		e.action.SetOutput(OutputCommitted, "false")
		e.action.Noticef("%s", outcome.Message())
		return 0
	default:
		e.action.Errorf("%s", outcome.Message())
		return 1
	}
}
