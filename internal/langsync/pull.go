package langsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/digitalmediaserver/crowdinsync/internal/crowdin"
	"go.uber.org/zap"
)

// PullResult describes what a pull left in the staging directory.
type PullResult struct {
	Scope      Scope
	StagingDir string
	// Export is empty when no export was requested.
	Export      crowdin.ExportStatus
	Files       []string
	StatusFiles []string
}

// Pull downloads the translation archive of the current branch and replaces
// the staging directory's content with it, then writes the configured status
// documents next to it. Pull never creates a branch. On failure the staging
// directory is left as it is.
func (s *Syncer) Pull(ctx context.Context) (PullResult, error) {
	protected := append([]string(nil), s.protectedDirs...)
	for _, set := range s.fileSets {
		protected = append(protected, set.SourceFolder)
	}
	staging, err := checkStagingDir(s.stagingDir, protected)
	if err != nil {
		return PullResult{}, err
	}
	scope, err := s.ResolveBranch(ctx, false)
	if err != nil {
		return PullResult{}, err
	}
	result := PullResult{Scope: scope, StagingDir: staging}

	if s.exportBeforePull {
		status, err := s.client.RequestExport(ctx, scope.Branch)
		if err != nil {
			return result, err
		}
		result.Export = status
		s.logger.Info("requested export", zap.String("status", string(status)), zap.String("branch", scope.String()))
	}

	archive, err := s.client.DownloadArchive(ctx, scope.Branch)
	if err != nil {
		return result, err
	}
	spooled, size, err := spool(archive)
	_ = archive.Close()
	if err != nil {
		return result, fmt.Errorf("download archive: %w", err)
	}
	defer os.Remove(spooled)
	s.logger.Debug("downloaded archive", zap.Int64("bytes", size))

	if err := purgeDir(staging); err != nil {
		return result, err
	}
	result.Files, err = extractZip(spooled, staging)
	if err != nil {
		return result, err
	}
	s.logger.Info("staged translations", zap.String("dir", staging), zap.Int("files", len(result.Files)))

	for _, artifact := range s.statusArtifacts {
		body, err := s.client.GetStatus(ctx, artifact.Language)
		if err != nil {
			return result, err
		}
		target := filepath.Join(staging, filepath.FromSlash(artifact.File))
		if err := writeFileAtomic(target, body, 0o644); err != nil {
			return result, fmt.Errorf("write status %s: %w", artifact.File, err)
		}
		result.StatusFiles = append(result.StatusFiles, filepath.ToSlash(artifact.File))
	}
	return result, nil
}
