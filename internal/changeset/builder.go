package changeset

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	logger "github.com/sirupsen/logrus"
)

// ErrPathOutsideRepository is returned for paths that are absolute or climb above the repository root
var ErrPathOutsideRepository = errors.New("path is outside the repository")

// Builder classifies paths as additions or deletions by their presence on the local filesystem
type Builder struct {
	fs      billy.Filesystem // rooted at the repository root
	tracker Tracker
	base    string // directory that input paths are relative to

	ignore gitignore.Matcher // loaded on first directory expansion
}

// NewBuilder creates a Builder reading files from fs. fs must be rooted at the repository root
func NewBuilder(fs billy.Filesystem, tracker Tracker) *Builder {
	if tracker == nil {
		tracker = NewUntrackedTracker()
	}
	return &Builder{
		fs:      fs,
		tracker: tracker,
	}
}

// WithBase makes input paths relative to dir, a repository-relative directory, instead of the repository root
func (b *Builder) WithBase(dir string) *Builder {
	b.base = filepath.ToSlash(dir)
	return b
}

// Build produces the change set for the given repository-relative paths. Existing files become additions carrying
// their current content, missing tracked files become deletions, and directories are expanded to the files below
// them. Missing paths the repository doesn't track contribute nothing, and symlinks are never followed
func (b *Builder) Build(ctx context.Context, paths []string) (ChangeSet, error) {
	acc := newAccumulator()

	for _, raw := range paths {
		if err := ctx.Err(); err != nil {
			return ChangeSet{}, err
		}

		p, err := b.resolvePath(raw)
		if err != nil {
			return ChangeSet{}, err
		}

		info, err := b.fs.Lstat(p)
		switch {
		case err == nil && info.IsDir():
			err = b.addDir(acc, p)
		case err == nil && info.Mode().IsRegular():
			err = b.addFile(acc, p)
		case err == nil:
			logger.Warnf("Skipping %s: not a regular file", p)
		case errors.Is(err, os.ErrNotExist):
			b.addMissing(acc, p)
			err = nil
		default:
			err = fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if err != nil {
			return ChangeSet{}, err
		}
	}

	logger.Debugf("Change set: %d additions, %d deletions", len(acc.cs.Additions), len(acc.cs.Deletions))
	return acc.cs, nil
}

func (b *Builder) addFile(acc *accumulator, p string) error {
	if acc.seen(p) {
		return nil
	}
	content, err := util.ReadFile(b.fs, p)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p, err)
	}
	acc.add(FileAddition{
		Path:     p,
		Contents: base64.StdEncoding.EncodeToString(content),
	})
	return nil
}

func (b *Builder) addMissing(acc *accumulator, p string) {
	if b.tracker.IsTracked(p) {
		acc.delete(p)
		return
	}

	under := b.tracker.TrackedUnder(p)
	if len(under) == 0 {
		logger.Warnf("Ignoring %s: it does not exist and is not tracked", p)
		return
	}
	for _, tracked := range under {
		acc.delete(tracked)
	}
}

func (b *Builder) addDir(acc *accumulator, dir string) error {
	matcher, err := b.ignoreMatcher()
	if err != nil {
		return err
	}

	err = b.walk(dir, func(p string, isDir bool) (bool, error) {
		ignored := matcher.Match(strings.Split(p, "/"), isDir)
		if isDir {
			// Descend into ignored directories only when they hold tracked files
			return !ignored || len(b.tracker.TrackedUnder(p)) > 0, nil
		}
		if ignored && !b.tracker.IsTracked(p) {
			return false, nil
		}
		return false, b.addFile(acc, p)
	})
	if err != nil {
		return err
	}

	for _, tracked := range b.tracker.TrackedUnder(dir) {
		if _, err := b.fs.Lstat(tracked); errors.Is(err, os.ErrNotExist) {
			acc.delete(tracked)
		} else if err != nil {
			return fmt.Errorf("failed to stat %s: %w", tracked, err)
		}
	}
	return nil
}

// walk visits the entries below dir in lexical order. For directories, visit reports whether to descend
func (b *Builder) walk(dir string, visit func(p string, isDir bool) (bool, error)) error {
	entries, err := b.fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if entry.Name() == ".git" {
				continue
			}
			descend, err := visit(p, true)
			if err != nil {
				return err
			}
			if descend {
				if err := b.walk(p, visit); err != nil {
					return err
				}
			}
		case entry.Mode().IsRegular():
			if _, err := visit(p, false); err != nil {
				return err
			}
		default:
			logger.Warnf("Skipping %s: not a regular file", p)
		}
	}
	return nil
}

func (b *Builder) ignoreMatcher() (gitignore.Matcher, error) {
	if b.ignore != nil {
		return b.ignore, nil
	}
	patterns, err := gitignore.ReadPatterns(b.fs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore patterns: %w", err)
	}
	b.ignore = gitignore.NewMatcher(patterns)
	return b.ignore, nil
}

func (b *Builder) resolvePath(raw string) (string, error) {
	if b.base == "" || b.base == "." {
		return normalizePath(raw)
	}
	if filepath.IsAbs(raw) || path.IsAbs(filepath.ToSlash(raw)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRepository, raw)
	}
	return normalizePath(path.Join(b.base, filepath.ToSlash(raw)))
}

// normalizePath cleans a repository-relative path into slash-separated form
func normalizePath(raw string) (string, error) {
	p := path.Clean(filepath.ToSlash(raw))
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRepository, raw)
	}
	return p, nil
}

// accumulator builds a ChangeSet while keeping each path once, at its first position
type accumulator struct {
	cs    ChangeSet
	paths map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{paths: make(map[string]struct{})}
}

func (a *accumulator) seen(p string) bool {
	_, ok := a.paths[p]
	return ok
}

func (a *accumulator) add(addition FileAddition) {
	a.paths[addition.Path] = struct{}{}
	a.cs.Additions = append(a.cs.Additions, addition)
}

func (a *accumulator) delete(p string) {
	if a.seen(p) {
		return
	}
	a.paths[p] = struct{}{}
	a.cs.Deletions = append(a.cs.Deletions, FileDeletion{Path: p})
}
