package langsync

import (
	"context"
	"errors"
	"testing"
)

type failingBranches struct{}

func (failingBranches) CurrentBranch() (string, error) { return "", errors.New("detached HEAD") }

func TestResolveRootBranchMakesNoRemoteCall(t *testing.T) {
	remote := newFakeRemote()
	s := newTestSyncer(t, remote, SyncerOptions{RootBranch: "master", Branches: StaticBranch("master")})

	for _, create := range []bool{false, true} {
		scope, err := s.ResolveBranch(context.Background(), create)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if !scope.IsRoot() {
			t.Fatalf("expected root scope, got %s", scope)
		}
	}
	if len(remote.calls) != 0 {
		t.Fatalf("expected zero remote calls, got %v", remote.calls)
	}
}

func TestResolveExistingBranch(t *testing.T) {
	remote := newFakeRemote(branch("develop"))
	s := newTestSyncer(t, remote, SyncerOptions{Branches: StaticBranch("develop")})
	scope, err := s.ResolveBranch(context.Background(), false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if scope.Branch != "develop" {
		t.Fatalf("expected develop scope, got %s", scope)
	}
	if remote.count("create") != 0 {
		t.Fatalf("expected no creation, got %v", remote.calls)
	}
}

func TestResolveMissingBranchWithoutCreate(t *testing.T) {
	remote := newFakeRemote(branch("develop"))
	s := newTestSyncer(t, remote, SyncerOptions{Branches: StaticBranch("feature/login")})
	_, err := s.ResolveBranch(context.Background(), false)
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected ErrBranchNotFound, got %v", err)
	}
	var bnf *BranchNotFoundError
	if !errors.As(err, &bnf) || bnf.Branch != "feature_login" {
		t.Fatalf("expected mapped branch name in error, got %v", err)
	}
	if got := err.Error(); got != `branch "feature_login" does not exist remotely; push this branch first` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestResolveMissingBranchCreates(t *testing.T) {
	remote := newFakeRemote()
	s := newTestSyncer(t, remote, SyncerOptions{Branches: StaticBranch("feature/login")})
	scope, err := s.ResolveBranch(context.Background(), true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if scope.Branch != "feature_login" {
		t.Fatalf("expected created scope, got %s", scope)
	}
	if remote.count("create_branch feature_login") != 1 {
		t.Fatalf("expected one branch creation, got %v", remote.calls)
	}
}

func TestResolveIgnoresSameNamedFolder(t *testing.T) {
	remote := newFakeRemote(folder("develop"))
	s := newTestSyncer(t, remote, SyncerOptions{Branches: StaticBranch("develop")})
	if _, err := s.ResolveBranch(context.Background(), false); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected a folder not to count as a branch, got %v", err)
	}
}

func TestResolveUndeterminedBranch(t *testing.T) {
	remote := newFakeRemote()
	for _, provider := range []BranchProvider{StaticBranch("  "), failingBranches{}} {
		s := newTestSyncer(t, remote, SyncerOptions{Branches: provider})
		if _, err := s.ResolveBranch(context.Background(), true); !errors.Is(err, ErrBranchUndetermined) {
			t.Fatalf("expected ErrBranchUndetermined, got %v", err)
		}
	}
	if len(remote.calls) != 0 {
		t.Fatalf("expected no remote calls, got %v", remote.calls)
	}
}

func TestRemoteBranchName(t *testing.T) {
	tests := map[string]string{
		"develop":           "develop",
		"feature/login":     "feature_login",
		` release:1.0*?"<>|`: "release_1.0______",
		`a\b`:               "a_b",
	}
	for in, want := range tests {
		if got := RemoteBranchName(in); got != want {
			t.Fatalf("RemoteBranchName(%q) = %q, want %q", in, got, want)
		}
	}
}
