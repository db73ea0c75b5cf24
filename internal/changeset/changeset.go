// Package changeset turns local file paths into the additions and deletions of a single remote commit.
package changeset

// FileAddition is a file to create or overwrite. Contents holds the file bytes, base64-encoded
type FileAddition struct {
	Path     string
	Contents string
}

// FileDeletion is a file to remove
type FileDeletion struct {
	Path string
}

// ChangeSet is the set of file changes applied by one commit. A path appears at most once across Additions and
// Deletions
type ChangeSet struct {
	Additions []FileAddition
	Deletions []FileDeletion
}

// Count returns the total number of file changes
func (cs ChangeSet) Count() int {
	return len(cs.Additions) + len(cs.Deletions)
}

// IsEmpty returns true if the change set contains no changes
func (cs ChangeSet) IsEmpty() bool {
	return cs.Count() == 0
}

// Paths returns every path touched by the change set, additions first
func (cs ChangeSet) Paths() []string {
	paths := make([]string, 0, cs.Count())
	for _, a := range cs.Additions {
		paths = append(paths, a.Path)
	}
	for _, d := range cs.Deletions {
		paths = append(paths, d.Path)
	}
	return paths
}
