package github

import (
	"context"
	"fmt"
)

const createCommitOnBranchMutation = `mutation CreateCommitOnBranch($input: CreateCommitOnBranchInput!) {
  createCommitOnBranch(input: $input) {
    commit {
      id
      oid
      url
    }
  }
}`

// CreateCommitOnBranch creates a commit on a branch. The API rejects the commit if ExpectedHeadOID is no longer the
// branch's head, so a concurrent update to the branch is never overwritten
func (c *Client) CreateCommitOnBranch(ctx context.Context, input CreateCommitOnBranchInput) (*CommitResult, error) {
	var data struct {
		CreateCommitOnBranch *CommitResult `json:"createCommitOnBranch"`
	}
	variables := map[string]any{"input": input}
	if err := c.Do(ctx, createCommitOnBranchMutation, variables, &data); err != nil {
		return nil, fmt.Errorf("failed to create commit on branch %s: %w", input.Branch.BranchName, err)
	}
	if data.CreateCommitOnBranch == nil {
		return &CommitResult{}, nil
	}

	return data.CreateCommitOnBranch, nil
}
