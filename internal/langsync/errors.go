package langsync

import (
	"errors"
	"fmt"

	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
)

var (
	// ErrBranchNotFound matches *BranchNotFoundError.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrBranchUndetermined is returned when the local VCS branch is blank
	// or cannot be read.
	ErrBranchUndetermined = errors.New("current branch cannot be determined")
	// ErrConsistency matches *ConsistencyError.
	ErrConsistency = errors.New("remote tree is inconsistent")
	// ErrConfiguration matches *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
)

// ConfigurationError reports an invalid or missing setting. It is always
// raised before any remote call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ConsistencyError reports that a node just created remotely could not be
// found as a branch or folder after re-fetching the tree.
type ConsistencyError struct {
	Path string
	// Found is the kind of the node occupying Path, or zero when nothing
	// does.
	Found namespace.Kind
}

func (e *ConsistencyError) Error() string {
	if e.Found != 0 {
		return fmt.Sprintf("created folder %q but a %s occupies that path", e.Path, e.Found)
	}
	return fmt.Sprintf("created folder %q but it is missing from the project tree", e.Path)
}

func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}

// BranchNotFoundError is returned when the current branch does not exist
// remotely and may not be created.
type BranchNotFoundError struct {
	Branch string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %q does not exist remotely; push this branch first", e.Branch)
}

func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}
