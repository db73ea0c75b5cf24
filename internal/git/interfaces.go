// Package git resolves the branch to commit to and creates commits on it through the GitHub API. It manipulates
// the remote repository directly; commits appear on the remote without a local checkout or push
package git

import (
	"context"

	"github.com/cchalm/ghcommit/internal/github"
)

// RemoteAPI is the subset of the GitHub GraphQL API used to commit to a branch
type RemoteAPI interface {
	// GetRepository fetches the repository with its default branch and, if branchName is not empty, the named branch
	GetRepository(ctx context.Context, owner, repo, branchName string) (*github.Repository, error)

	// CreateCommitOnBranch creates a commit, failing if the branch head is not the expected head
	CreateCommitOnBranch(ctx context.Context, input github.CreateCommitOnBranchInput) (*github.CommitResult, error)
}

// Target is the branch a commit will be created on
type Target struct {
	RepositoryNameWithOwner string

	// BranchName is the requested branch, or the default branch's name if none was requested
	BranchName string

	// Ref is the resolved branch with its recent history. It is nil if the repository has no such branch
	Ref *github.Ref
}

// CommitMessage is the message of a created commit
type CommitMessage struct {
	Headline string
	Body     string
}
