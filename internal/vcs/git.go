// Package vcs reads the checked-out branch of the local Git working copy.
package vcs

import (
	"errors"
	"fmt"

	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
)

// ErrDetachedHead is returned when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// GitBranch reports the branch checked out in the repository containing
// Path. Parent directories are searched for the .git directory.
type GitBranch struct {
	Path string
}

// CurrentBranch returns the short name of the branch HEAD points at. An
// unborn branch, as in a fresh repository, is reported by name.
func (g GitBranch) CurrentBranch() (string, error) {
	path := g.Path
	if path == "" {
		path = "."
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return "", fmt.Errorf("no git repository at %q", path)
		}
		return "", fmt.Errorf("unable to open repository located at %q: %v", path, err)
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("unable to read HEAD: %v", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Target().Short(), nil
}
