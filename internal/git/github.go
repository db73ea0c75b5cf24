package git

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/cchalm/ghcommit/internal/changeset"
	"github.com/cchalm/ghcommit/internal/github"
)

// GithubGitRepo resolves branches and commits change sets using the GitHub GraphQL API
type GithubGitRepo struct {
	api              RemoteAPI
	clientMutationID string
}

// Option configures a GithubGitRepo
type Option func(*GithubGitRepo)

// WithClientMutationID tags created commits' mutations with the given id, e.g. a run id
func WithClientMutationID(id string) Option {
	return func(ggr *GithubGitRepo) {
		ggr.clientMutationID = id
	}
}

// NewGithubGitRepo creates a new GitHub-backed repository
func NewGithubGitRepo(api RemoteAPI, opts ...Option) *GithubGitRepo {
	ggr := &GithubGitRepo{api: api}
	for _, opt := range opts {
		opt(ggr)
	}
	return ggr
}

// ResolveTarget fetches the repository and picks the branch to commit to: the named branch if branchName is not
// empty, otherwise the default branch. A named branch that doesn't exist is a BranchNotFoundError
func (ggr *GithubGitRepo) ResolveTarget(ctx context.Context, owner, repo, branchName string) (Target, error) {
	repository, err := ggr.api.GetRepository(ctx, owner, repo, branchName)
	if err != nil {
		return Target{}, &RemoteCallError{Op: "failed to fetch repository", Err: err}
	}

	if branchName != "" && repository.Ref == nil {
		return Target{}, &BranchNotFoundError{Branch: branchName}
	}

	target := Target{
		RepositoryNameWithOwner: repository.NameWithOwner,
		BranchName:              branchName,
		Ref:                     repository.Ref,
	}
	if target.Ref == nil {
		target.Ref = repository.DefaultBranchRef
	}
	if target.BranchName == "" && target.Ref != nil {
		target.BranchName = target.Ref.Name
	}

	logger.Debugf("Resolved target branch %q of %s", target.BranchName, target.RepositoryNameWithOwner)
	return target, nil
}

// ParentCommit returns the head of the target branch. Only the first node of the history is considered: it is the
// branch tip the created commit's expected head is checked against
func ParentCommit(target Target) (*github.HistoryNode, error) {
	head := target.Ref.Head()
	if !head.IsCommit() {
		branch := target.BranchName
		if target.Ref != nil {
			branch = target.Ref.Name
		}
		return nil, &ParentCommitError{Branch: branch}
	}
	return head, nil
}

// CommitChanges creates a single commit applying the change set on top of the target branch's head. The remote
// rejects the commit if the branch moved since it was resolved; that rejection is returned, not retried
func (ggr *GithubGitRepo) CommitChanges(ctx context.Context, target Target, changes changeset.ChangeSet, message CommitMessage) (*github.CommitResult, error) {
	parent, err := ParentCommit(target)
	if err != nil {
		return nil, err
	}

	input := github.CreateCommitOnBranchInput{
		Branch: github.CommittableBranch{
			RepositoryNameWithOwner: target.RepositoryNameWithOwner,
			BranchName:              target.BranchName,
		},
		ExpectedHeadOID: parent.OID,
		FileChanges:     toFileChanges(changes),
		Message: github.CommitMessage{
			Headline: message.Headline,
			Body:     message.Body,
		},
		ClientMutationID: ggr.clientMutationID,
	}

	result, err := ggr.api.CreateCommitOnBranch(ctx, input)
	if err != nil {
		return nil, &RemoteCallError{Op: "failed to commit files", Err: err}
	}

	return result, nil
}

func toFileChanges(changes changeset.ChangeSet) github.FileChanges {
	var fc github.FileChanges
	for _, a := range changes.Additions {
		fc.Additions = append(fc.Additions, github.FileAddition{Path: a.Path, Contents: a.Contents})
	}
	for _, d := range changes.Deletions {
		fc.Deletions = append(fc.Deletions, github.FileDeletion{Path: d.Path})
	}
	return fc
}
