package git

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolution failures. Use errors.Is to check for them
var (
	// ErrBranchNotFound indicates that an explicitly requested branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrParentCommitUnresolvable indicates that the target branch's history has no commit at its head
	ErrParentCommitUnresolvable = errors.New("parent commit unresolvable")

	// ErrRemoteCall indicates that a call to the remote API failed
	ErrRemoteCall = errors.New("remote call failed")
)

// BranchNotFoundError is returned when a requested branch does not exist on the remote repository
type BranchNotFoundError struct {
	Branch string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %q does not exist in the repository", e.Branch)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// ParentCommitError is returned when the head of the target branch can't serve as a parent commit
type ParentCommitError struct {
	Branch string
}

func (e *ParentCommitError) Error() string {
	return fmt.Sprintf("unable to locate the parent commit of the branch %q", e.Branch)
}

// Is returns true if the target error is ErrParentCommitUnresolvable
func (e *ParentCommitError) Is(target error) bool {
	return target == ErrParentCommitUnresolvable
}

// RemoteCallError wraps a failed call to the remote API
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrRemoteCall
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}
