package github

// Repository is the remote repository together with its default branch and, when one was requested, a named branch
type Repository struct {
	NameWithOwner    string `json:"nameWithOwner"`
	DefaultBranchRef *Ref   `json:"defaultBranchRef"`
	Ref              *Ref   `json:"ref"`
}

// Ref is a branch reference and the most recent commits reachable from its tip
type Ref struct {
	Name   string `json:"name"`
	Target Target `json:"target"`
}

// Target is the object a ref points at. History is empty unless the object is a commit
type Target struct {
	History History `json:"history"`
}

// History lists commits newest-first
type History struct {
	Nodes []HistoryNode `json:"nodes"`
}

// HistoryNode is one entry of a commit history
type HistoryNode struct {
	TypeName string `json:"__typename"`
	ID       string `json:"id"`
	OID      string `json:"oid"`
}

// IsCommit returns true if the node is a commit that can serve as a parent
func (n *HistoryNode) IsCommit() bool {
	return n != nil && n.TypeName == "Commit" && n.OID != ""
}

// Head returns the first node of the ref's history, or nil if the history is empty
func (r *Ref) Head() *HistoryNode {
	if r == nil || len(r.Target.History.Nodes) == 0 {
		return nil
	}
	return &r.Target.History.Nodes[0]
}

// CreateCommitOnBranchInput is the input of the createCommitOnBranch mutation
type CreateCommitOnBranchInput struct {
	Branch           CommittableBranch `json:"branch"`
	ExpectedHeadOID  string            `json:"expectedHeadOid"`
	FileChanges      FileChanges       `json:"fileChanges"`
	Message          CommitMessage     `json:"message"`
	ClientMutationID string            `json:"clientMutationId,omitempty"`
}

// CommittableBranch identifies the branch a commit is created on
type CommittableBranch struct {
	RepositoryNameWithOwner string `json:"repositoryNameWithOwner"`
	BranchName              string `json:"branchName"`
}

// FileChanges lists the additions and deletions of a commit
type FileChanges struct {
	Additions []FileAddition `json:"additions,omitempty"`
	Deletions []FileDeletion `json:"deletions,omitempty"`
}

// FileAddition creates or replaces a file. Contents must be base64-encoded
type FileAddition struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

// FileDeletion removes a file
type FileDeletion struct {
	Path string `json:"path"`
}

// CommitMessage is the headline and optional body of a commit
type CommitMessage struct {
	Headline string `json:"headline"`
	Body     string `json:"body,omitempty"`
}

// CommitResult is the payload of a createCommitOnBranch mutation. Commit is nil if the remote returned none
type CommitResult struct {
	Commit *Commit `json:"commit"`
}

// Commit is a commit created on the remote
type Commit struct {
	ID  string `json:"id"`
	OID string `json:"oid"`
	URL string `json:"url"`
}

// GetID returns the commit's node id, or "" if there is no commit
func (cr *CommitResult) GetID() string {
	if cr == nil || cr.Commit == nil {
		return ""
	}
	return cr.Commit.ID
}
