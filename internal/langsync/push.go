package langsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/digitalmediaserver/crowdinsync/internal/crowdin"
	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
	"go.uber.org/zap"
)

// ActionKind classifies what a push does with one file set.
type ActionKind int

const (
	ActionSkip ActionKind = iota
	ActionCreate
	ActionUpdate
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	default:
		return "skip"
	}
}

// SyncAction is the decision taken (or planned) for one file set.
type SyncAction struct {
	Kind       ActionKind
	FileSet    FileSet
	LocalPath  string
	RemotePath string
	// Reason explains a skip.
	Reason string
}

// Push uploads every configured file set in order. Missing local files are
// skipped with a warning; any other failure aborts the push and is returned
// along with the actions already carried out.
func (s *Syncer) Push(ctx context.Context) ([]SyncAction, error) {
	name, err := s.currentBranch()
	if err != nil {
		return nil, err
	}
	scope, snap, err := s.resolveBranch(ctx, name, s.createBranch)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		if snap, err = s.describe(ctx); err != nil {
			return nil, err
		}
	}

	actions := make([]SyncAction, 0, len(s.fileSets))
	stale := false
	for _, set := range s.fileSets {
		action := SyncAction{FileSet: set, LocalPath: set.LocalPath(), RemotePath: scope.path(set.RemoteFilePath())}
		content, err := os.ReadFile(action.LocalPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				action.Kind = ActionSkip
				action.Reason = "local file does not exist"
				s.logger.Warn("skipping file set: local file does not exist",
					zap.String("file_set", set.BaseName),
					zap.String("path", action.LocalPath))
				actions = append(actions, action)
				continue
			}
			return actions, fmt.Errorf("read %s: %w", action.LocalPath, err)
		}

		if stale {
			if snap, err = s.describe(ctx); err != nil {
				return actions, err
			}
			stale = false
		}
		remoteFile := set.RemoteFilePath()
		folder, snapAfter, err := s.createFolders(ctx, snap, scope, parentDir(remoteFile))
		if err != nil {
			return actions, err
		}
		snap = snapAfter

		action.Kind, err = classify(folder, path.Base(remoteFile))
		if err != nil {
			return actions, err
		}
		upload := set.upload(remoteFile, content)
		switch action.Kind {
		case ActionUpdate:
			err = s.client.UpdateFile(ctx, scope.Branch, upload)
		case ActionCreate:
			err = s.client.AddFile(ctx, scope.Branch, upload)
			stale = true
		}
		if err != nil {
			return actions, fmt.Errorf("%s %s: %w", action.Kind, action.RemotePath, err)
		}
		s.logger.Info("pushed file",
			zap.String("action", action.Kind.String()),
			zap.String("remote", action.RemotePath),
			zap.String("branch", scope.String()))
		actions = append(actions, action)
	}
	return actions, nil
}

// Plan classifies every file set against a single snapshot without changing
// anything remotely. Folders that do not exist yet imply Create.
func (s *Syncer) Plan(ctx context.Context) ([]SyncAction, error) {
	name, err := s.currentBranch()
	if err != nil {
		return nil, err
	}
	scope := Scope{}
	if name != s.rootBranch {
		scope.Branch = RemoteBranchName(name)
	}
	snap, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}
	branchMissing := false
	if !scope.IsRoot() {
		if _, err := namespace.Resolve(snap, scope.Branch, namespace.Kinds(namespace.KindBranch)); err != nil {
			if !errors.Is(err, namespace.ErrNotFound) {
				return nil, err
			}
			if !s.createBranch {
				return nil, &BranchNotFoundError{Branch: scope.Branch}
			}
			branchMissing = true
		}
	}

	actions := make([]SyncAction, 0, len(s.fileSets))
	for _, set := range s.fileSets {
		action := SyncAction{FileSet: set, LocalPath: set.LocalPath(), RemotePath: scope.path(set.RemoteFilePath())}
		if _, err := os.Stat(action.LocalPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("stat %s: %w", action.LocalPath, err)
			}
			action.Kind = ActionSkip
			action.Reason = "local file does not exist"
			actions = append(actions, action)
			continue
		}
		action.Kind = ActionCreate
		if !branchMissing {
			kind, err := classify(snap, action.RemotePath)
			if err != nil {
				return nil, err
			}
			action.Kind = kind
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// classify decides between Create and Update for the file at rel below c.
func classify(c namespace.Container, rel string) (ActionKind, error) {
	_, err := namespace.Resolve(c, rel, namespace.Files)
	switch {
	case err == nil:
		return ActionUpdate, nil
	case errors.Is(err, namespace.ErrNotFound):
		return ActionCreate, nil
	default:
		return ActionSkip, err
	}
}

func parentDir(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func (f FileSet) upload(remotePath string, content []byte) crowdin.FileUpload {
	return crowdin.FileUpload{
		Path:                    remotePath,
		Content:                 content,
		Type:                    f.Type,
		Title:                   f.Title,
		ExportPattern:           f.ExportPattern,
		UpdateOption:            f.Options.UpdateOption,
		EscapeQuotes:            f.Options.EscapeQuotes,
		EscapeSpecialCharacters: f.Options.EscapeSpecialCharacters,
	}
}
