package changeset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Tracker reports which paths the local repository tracks. Paths are repository-relative and slash-separated
type Tracker interface {
	// IsTracked returns true if the path is a tracked file
	IsTracked(path string) bool

	// TrackedUnder returns the tracked files below dir, sorted
	TrackedUnder(dir string) []string
}

// indexTracker answers from a snapshot of the repository's index and HEAD tree
type indexTracker struct {
	paths []string // sorted
	set   map[string]struct{}
}

// NewGitTracker snapshots the paths the given repository tracks: the entries of its index together with the files
// of its HEAD commit. Files removed from the index but still in HEAD count as tracked
func NewGitTracker(repo *gogit.Repository) (Tracker, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read git index: %w", err)
	}

	t := &indexTracker{
		paths: make([]string, 0, len(idx.Entries)),
		set:   make(map[string]struct{}, len(idx.Entries)),
	}
	for _, entry := range idx.Entries {
		t.add(entry.Name) // conflict stages share a name
	}

	if err := t.addHead(repo); err != nil {
		return nil, err
	}
	sort.Strings(t.paths)

	return t, nil
}

func (t *indexTracker) add(name string) {
	if _, ok := t.set[name]; ok {
		return
	}
	t.set[name] = struct{}{}
	t.paths = append(t.paths, name)
}

// addHead adds the files of the HEAD commit. An unborn HEAD has none
func (t *indexTracker) addHead(repo *gogit.Repository) error {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to read HEAD tree: %w", err)
	}
	err = tree.Files().ForEach(func(f *object.File) error {
		t.add(f.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list HEAD tree: %w", err)
	}
	return nil
}

// OpenGitTracker opens the repository containing dir and returns a tracker for it together with the root of its
// worktree. If dir is not inside a git repository, OpenGitTracker returns ErrNotARepository
func OpenGitTracker(dir string) (Tracker, string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, "", ErrNotARepository
	} else if err != nil {
		return nil, "", fmt.Errorf("failed to open git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get worktree: %w", err)
	}

	tracker, err := NewGitTracker(repo)
	if err != nil {
		return nil, "", err
	}

	return tracker, worktree.Filesystem.Root(), nil
}

// ErrNotARepository is returned when no git repository encloses the working directory
var ErrNotARepository = errors.New("not a git repository")

func (t *indexTracker) IsTracked(path string) bool {
	_, ok := t.set[path]
	return ok
}

func (t *indexTracker) TrackedUnder(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if dir == "." || dir == "" {
		return append([]string(nil), t.paths...)
	}

	start := sort.SearchStrings(t.paths, prefix)
	var under []string
	for _, p := range t.paths[start:] {
		if !strings.HasPrefix(p, prefix) {
			break
		}
		under = append(under, p)
	}
	return under
}

// untracked is the Tracker used when there is no local repository. Missing paths can't be classified as deletions
type untracked struct{}

// NewUntrackedTracker returns a Tracker that tracks nothing
func NewUntrackedTracker() Tracker {
	return untracked{}
}

func (untracked) IsTracked(string) bool         { return false }
func (untracked) TrackedUnder(string) []string { return nil }
