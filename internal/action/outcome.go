package action

import (
	"errors"

	"github.com/cchalm/ghcommit/internal/git"
	"github.com/cchalm/ghcommit/internal/github"
)

// Sentinel errors for conditions detected by the runner itself
var (
	// ErrFilesRequired indicates that no file paths were supplied
	ErrFilesRequired = errors.New("input required and not supplied: files")

	// ErrNoFileChanges indicates that the supplied paths produced no additions or deletions
	ErrNoFileChanges = errors.New("no changes found")
)

// OutcomeKind is the terminal state of a run
type OutcomeKind int

const (
	// OutcomeFailed means the run aborted; Outcome.Err says why
	OutcomeFailed OutcomeKind = iota
	// OutcomeCommitted means a commit was created
	OutcomeCommitted
	// OutcomeNoChanges means there was nothing to commit. It is not a failure
	OutcomeNoChanges
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCommitted:
		return "committed"
	case OutcomeNoChanges:
		return "no-changes"
	default:
		return "failed"
	}
}

// FailureKind classifies a failed run
type FailureKind int

const (
	// FailureNone is the failure kind of a run that did not fail
	FailureNone FailureKind = iota
	// FailureFilesRequired means no file paths were supplied
	FailureFilesRequired
	// FailureBranchNotFound means the requested branch does not exist
	FailureBranchNotFound
	// FailureParentCommitUnresolvable means the head of the target branch is not a commit
	FailureParentCommitUnresolvable
	// FailureRemoteCall means a request to GitHub failed or was rejected
	FailureRemoteCall
	// FailureLocal covers local problems, e.g. unreadable files or paths outside the repository
	FailureLocal
)

// Outcome is the single result of a run
type Outcome struct {
	Kind    OutcomeKind
	Failure FailureKind
	Commit  *github.Commit // set when Kind is OutcomeCommitted and the remote returned a commit
	Err     error
}

// CommitID returns the created commit's id, or "" if there is none
func (o Outcome) CommitID() string {
	if o.Commit == nil {
		return ""
	}
	return o.Commit.ID
}

// Message returns a human-readable description of the outcome
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeCommitted:
		return "committed " + o.CommitID()
	case OutcomeNoChanges:
		return "No changes found"
	default:
		if o.Err == nil {
			return "unknown error"
		}
		return o.Err.Error()
	}
}

// classify maps the result of a run to its outcome. It is the only place run errors are inspected
func classify(result *github.CommitResult, err error) Outcome {
	if err == nil {
		outcome := Outcome{Kind: OutcomeCommitted}
		if result != nil {
			outcome.Commit = result.Commit
		}
		return outcome
	}

	if errors.Is(err, ErrNoFileChanges) {
		return Outcome{Kind: OutcomeNoChanges}
	}

	outcome := Outcome{Kind: OutcomeFailed, Err: err}
	switch {
	case errors.Is(err, ErrFilesRequired):
		outcome.Failure = FailureFilesRequired
	case errors.Is(err, git.ErrBranchNotFound):
		outcome.Failure = FailureBranchNotFound
	case errors.Is(err, git.ErrParentCommitUnresolvable):
		outcome.Failure = FailureParentCommitUnresolvable
	case errors.Is(err, git.ErrRemoteCall):
		outcome.Failure = FailureRemoteCall
	default:
		outcome.Failure = FailureLocal
	}
	return outcome
}
