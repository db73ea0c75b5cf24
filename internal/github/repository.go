package github

import (
	"context"
	"fmt"
)

const repositoryQuery = `query GetRepository($owner: String!, $repo: String!, $ref: String!, $withRef: Boolean!) {
  repository(owner: $owner, name: $repo) {
    nameWithOwner
    defaultBranchRef {
      ...RefHead
    }
    ref(qualifiedName: $ref) @include(if: $withRef) {
      ...RefHead
    }
  }
}

fragment RefHead on Ref {
  name
  target {
    ... on Commit {
      history(first: 1) {
        nodes {
          __typename
          id
          oid
        }
      }
    }
  }
}`

// GetRepository fetches the repository, its default branch, and, if branchName is not empty, the named branch. The
// returned Ref is nil if the named branch does not exist
func (c *Client) GetRepository(ctx context.Context, owner, repo, branchName string) (*Repository, error) {
	variables := map[string]any{
		"owner":   owner,
		"repo":    repo,
		"ref":     "",
		"withRef": branchName != "",
	}
	if branchName != "" {
		variables["ref"] = "refs/heads/" + branchName
	}

	var data struct {
		Repository *Repository `json:"repository"`
	}
	if err := c.Do(ctx, repositoryQuery, variables, &data); err != nil {
		return nil, fmt.Errorf("failed to query repository %s/%s: %w", owner, repo, err)
	}
	if data.Repository == nil {
		return nil, fmt.Errorf("repository %s/%s not found", owner, repo)
	}

	return data.Repository, nil
}
