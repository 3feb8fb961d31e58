package langsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
	"go.uber.org/zap"
)

// Scope is a handle on the part of the project a run works in. The zero
// value is the unscoped project root.
type Scope struct {
	Branch string
}

// IsRoot reports whether s is the root sentinel.
func (s Scope) IsRoot() bool { return s.Branch == "" }

func (s Scope) String() string {
	if s.IsRoot() {
		return "(root)"
	}
	return s.Branch
}

// path returns rel as a path from the namespace root.
func (s Scope) path(rel string) string {
	return namespace.Join(s.Branch, rel)
}

// container returns the node holding the scope's content in snap.
func (s Scope) container(snap *namespace.Snapshot) (namespace.Container, error) {
	if s.IsRoot() {
		return snap, nil
	}
	node, err := namespace.Resolve(snap, s.Branch, namespace.Kinds(namespace.KindBranch))
	if err != nil {
		if errors.Is(err, namespace.ErrNotFound) {
			if n, ok := namespace.Lookup(snap, s.Branch); ok {
				return nil, &ConsistencyError{Path: s.Branch, Found: n.Kind()}
			}
			return nil, &ConsistencyError{Path: s.Branch}
		}
		return nil, err
	}
	return node, nil
}

const forbiddenBranchChars = `\/:*?"<>|`

// RemoteBranchName maps a VCS branch name to a name the remote service
// accepts as a single path segment.
func RemoteBranchName(vcsName string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenBranchChars, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(vcsName))
}

func (s *Syncer) currentBranch() (string, error) {
	name, err := s.branches.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBranchUndetermined, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrBranchUndetermined
	}
	return name, nil
}

// ResolveBranch maps the current VCS branch to a remote scope. The root
// branch short-circuits to the root sentinel without any remote call. A
// missing remote branch is created when create is set, otherwise a
// *BranchNotFoundError is returned.
func (s *Syncer) ResolveBranch(ctx context.Context, create bool) (Scope, error) {
	name, err := s.currentBranch()
	if err != nil {
		return Scope{}, err
	}
	scope, _, err := s.resolveBranch(ctx, name, create)
	return scope, err
}

// resolveBranch also returns the snapshot the branch was found in. It is
// nil when no tree was fetched (root branch) or when the branch had to be
// created, since the fetched tree is then stale.
func (s *Syncer) resolveBranch(ctx context.Context, vcsName string, create bool) (Scope, *namespace.Snapshot, error) {
	if vcsName == s.rootBranch {
		s.logger.Debug("using project root", zap.String("branch", vcsName))
		return Scope{}, nil, nil
	}
	remote := RemoteBranchName(vcsName)
	snap, err := s.describe(ctx)
	if err != nil {
		return Scope{}, nil, err
	}
	_, err = namespace.Resolve(snap, remote, namespace.Kinds(namespace.KindBranch))
	switch {
	case err == nil:
		s.logger.Debug("using remote branch", zap.String("branch", remote))
		return Scope{Branch: remote}, snap, nil
	case !errors.Is(err, namespace.ErrNotFound):
		return Scope{}, nil, err
	case !create:
		return Scope{}, nil, &BranchNotFoundError{Branch: remote}
	}
	if err := s.client.CreateDirectory(ctx, "", remote, true); err != nil {
		return Scope{}, nil, fmt.Errorf("create branch %q: %w", remote, err)
	}
	s.logger.Info("created remote branch", zap.String("branch", remote), zap.String("vcs_branch", vcsName))
	return Scope{Branch: remote}, nil, nil
}
