// Package langsync reconciles local resource files with a remote translation
// project: it resolves the branch to work in, provisions remote folders,
// creates or updates source files on push, and stages the translation
// archive on pull.
package langsync

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/digitalmediaserver/crowdinsync/internal/crowdin"
	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
	"go.uber.org/zap"
)

// RemoteClient is the remote project API consumed by the Syncer.
// *crowdin.HTTPClient implements it.
type RemoteClient interface {
	DescribeProject(ctx context.Context) (*namespace.Snapshot, error)
	CreateDirectory(ctx context.Context, branch, dirPath string, asBranch bool) error
	AddFile(ctx context.Context, branch string, f crowdin.FileUpload) error
	UpdateFile(ctx context.Context, branch string, f crowdin.FileUpload) error
	RequestExport(ctx context.Context, branch string) (crowdin.ExportStatus, error)
	DownloadArchive(ctx context.Context, branch string) (io.ReadCloser, error)
	GetStatus(ctx context.Context, language string) ([]byte, error)
}

// BranchProvider reports the current VCS branch.
type BranchProvider interface {
	CurrentBranch() (string, error)
}

// StaticBranch is a BranchProvider for a fixed branch name.
type StaticBranch string

func (b StaticBranch) CurrentBranch() (string, error) { return string(b), nil }

// FileOptions are the type-specific import options of a file set.
type FileOptions struct {
	EscapeQuotes            *int
	EscapeSpecialCharacters *int
	// UpdateOption is the conflict policy applied when an existing remote
	// file is updated.
	UpdateOption string
}

const (
	UpdateAsUnapproved   = "update_as_unapproved"
	UpdateWithoutChanges = "update_without_changes"
)

// FileSet describes one local source file and where it lives remotely.
type FileSet struct {
	SourceFolder string
	BaseName     string
	// RemotePath is an optional folder path, relative to the branch, that
	// prefixes BaseName remotely.
	RemotePath    string
	ExportPattern string
	Type          string
	Title         string
	Options       FileOptions
}

// LocalPath is the path of the source file on disk.
func (f FileSet) LocalPath() string {
	return filepath.Join(f.SourceFolder, f.BaseName)
}

// RemoteFilePath is the path of the file relative to its branch.
func (f FileSet) RemoteFilePath() string {
	return namespace.Join(f.RemotePath, f.BaseName)
}

// StatusArtifact names a status document written to the staging directory
// on pull. An empty Language requests the project-wide status.
type StatusArtifact struct {
	Language string
	File     string
}

type SyncerOptions struct {
	// RootBranch is the VCS branch that maps to the unscoped project root.
	RootBranch string
	// CreateBranch lets Push create the remote branch when it is missing.
	CreateBranch     bool
	Branches         BranchProvider
	FileSets         []FileSet
	StagingDir       string
	ExportBeforePull bool
	StatusArtifacts  []StatusArtifact
	// ProtectedDirs may never lie inside the staging directory, which pull
	// purges. Source folders are always protected.
	ProtectedDirs []string
	Logger        *zap.Logger
}

// Syncer is immutable once built and holds no tree state between calls.
type Syncer struct {
	client           RemoteClient
	rootBranch       string
	createBranch     bool
	branches         BranchProvider
	fileSets         []FileSet
	stagingDir       string
	exportBeforePull bool
	statusArtifacts  []StatusArtifact
	protectedDirs    []string
	logger           *zap.Logger
}

func NewSyncer(client RemoteClient, opts SyncerOptions) (*Syncer, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if opts.Branches == nil {
		return nil, &ConfigurationError{Field: "branch", Reason: "a branch provider is required"}
	}
	rootBranch := strings.TrimSpace(opts.RootBranch)
	if rootBranch == "" {
		return nil, &ConfigurationError{Field: "root_branch", Reason: "is required"}
	}
	if err := validateFileSets(opts.FileSets); err != nil {
		return nil, err
	}
	for i, a := range opts.StatusArtifacts {
		if err := validateRelativeFile(a.File); err != nil {
			return nil, &ConfigurationError{Field: fmt.Sprintf("status[%d].file", i), Reason: err.Error()}
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		client:           client,
		rootBranch:       rootBranch,
		createBranch:     opts.CreateBranch,
		branches:         opts.Branches,
		fileSets:         append([]FileSet(nil), opts.FileSets...),
		stagingDir:       strings.TrimSpace(opts.StagingDir),
		exportBeforePull: opts.ExportBeforePull,
		statusArtifacts:  append([]StatusArtifact(nil), opts.StatusArtifacts...),
		protectedDirs:    append([]string(nil), opts.ProtectedDirs...),
		logger:           logger,
	}, nil
}

func validateFileSets(sets []FileSet) error {
	seen := map[string]int{}
	for i, fs := range sets {
		field := func(name string) string { return fmt.Sprintf("files[%d].%s", i, name) }
		if strings.TrimSpace(fs.SourceFolder) == "" {
			return &ConfigurationError{Field: field("source_folder"), Reason: "is required"}
		}
		if strings.TrimSpace(fs.BaseName) == "" {
			return &ConfigurationError{Field: field("base_name"), Reason: "is required"}
		}
		if strings.ContainsAny(fs.BaseName, `/\`) || fs.BaseName == "." || fs.BaseName == ".." {
			return &ConfigurationError{Field: field("base_name"), Reason: "must be a plain file name"}
		}
		for _, seg := range strings.Split(strings.Trim(fs.RemotePath, "/"), "/") {
			if seg == "." || seg == ".." {
				return &ConfigurationError{Field: field("remote_path"), Reason: "must not contain . or .. segments"}
			}
		}
		if strings.Contains(strings.Trim(fs.RemotePath, "/"), "//") {
			return &ConfigurationError{Field: field("remote_path"), Reason: "must not contain empty segments"}
		}
		switch fs.Options.UpdateOption {
		case "", UpdateAsUnapproved, UpdateWithoutChanges:
		default:
			return &ConfigurationError{Field: field("update_option"), Reason: fmt.Sprintf("unsupported value %q", fs.Options.UpdateOption)}
		}
		if q := fs.Options.EscapeQuotes; q != nil && (*q < 0 || *q > 3) {
			return &ConfigurationError{Field: field("escape_quotes"), Reason: "must be between 0 and 3"}
		}
		if e := fs.Options.EscapeSpecialCharacters; e != nil && (*e < 0 || *e > 1) {
			return &ConfigurationError{Field: field("escape_special_characters"), Reason: "must be 0 or 1"}
		}
		remote := fs.RemoteFilePath()
		if prev, dup := seen[remote]; dup {
			return &ConfigurationError{Field: field("base_name"), Reason: fmt.Sprintf("remote path %q is also used by files[%d]", remote, prev)}
		}
		seen[remote] = i
	}
	return nil
}

func validateRelativeFile(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("is required")
	}
	if filepath.IsAbs(name) || path.IsAbs(name) {
		return fmt.Errorf("must be relative to the staging directory")
	}
	for _, seg := range strings.Split(filepath.ToSlash(name), "/") {
		if seg == ".." {
			return fmt.Errorf("must stay inside the staging directory")
		}
	}
	return nil
}

func (s *Syncer) describe(ctx context.Context) (*namespace.Snapshot, error) {
	snap, err := s.client.DescribeProject(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched project tree", zap.Int("nodes", namespace.Count(snap)))
	return snap, nil
}
