package langsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
	"go.uber.org/zap"
)

// createFolders makes sure every segment of relPath exists as a folder
// below scope and returns the leaf container together with the snapshot
// the leaf was resolved in. Existing segments cost no remote call. Each
// missing segment is created and the whole tree is fetched again before
// going on, so the returned snapshot is never older than the last creation.
func (s *Syncer) createFolders(ctx context.Context, snap *namespace.Snapshot, scope Scope, relPath string) (namespace.Container, *namespace.Snapshot, error) {
	start, err := scope.container(snap)
	if err != nil {
		return nil, nil, err
	}
	if relPath == "" {
		return start, snap, nil
	}
	segments, err := namespace.Split(relPath)
	if err != nil {
		return nil, nil, err
	}

	var leaf namespace.Container = start
	for i := range segments {
		relative := namespace.Join(segments[:i+1]...)
		cumulative := scope.path(relative)

		node, err := namespace.Resolve(snap, cumulative, namespace.Containers)
		if err == nil {
			leaf = node
			continue
		}
		if !errors.Is(err, namespace.ErrNotFound) {
			return nil, nil, err
		}

		if err := s.client.CreateDirectory(ctx, scope.Branch, relative, false); err != nil {
			return nil, nil, fmt.Errorf("create folder %q: %w", cumulative, err)
		}
		s.logger.Info("created remote folder", zap.String("path", cumulative))

		snap, err = s.describe(ctx)
		if err != nil {
			return nil, nil, err
		}
		node, err = namespace.Resolve(snap, cumulative, namespace.Containers)
		if err != nil {
			if !errors.Is(err, namespace.ErrNotFound) {
				return nil, nil, err
			}
			if other, ok := namespace.Lookup(snap, cumulative); ok {
				return nil, nil, &ConsistencyError{Path: cumulative, Found: other.Kind()}
			}
			return nil, nil, &ConsistencyError{Path: cumulative}
		}
		leaf = node
	}
	return leaf, snap, nil
}
