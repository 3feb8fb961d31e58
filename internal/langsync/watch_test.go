package langsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchPushesOnSourceChange(t *testing.T) {
	remote := newFakeRemote()
	src := t.TempDir()
	writeSource(t, src, "messages.properties", "a=1")
	s := newTestSyncer(t, remote, SyncerOptions{FileSets: []FileSet{{SourceFolder: src, BaseName: "messages.properties"}}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pushed := make(chan []SyncAction, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 20*time.Millisecond, func(actions []SyncAction, err error) {
			if err != nil {
				t.Errorf("push failed: %v", err)
			}
			pushed <- actions
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	var actions []SyncAction
wait:
	for {
		select {
		case actions = <-pushed:
			break wait
		case <-tick.C:
			if err := os.WriteFile(filepath.Join(src, "messages.properties"), []byte("a=2"), 0o644); err != nil {
				t.Fatalf("write failed: %v", err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for push")
		}
	}
	if len(actions) != 1 || actions[0].Kind != ActionCreate {
		t.Fatalf("expected a create, got %+v", actions)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop")
	}
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	remote := newFakeRemote()
	src := t.TempDir()
	writeSource(t, src, "messages.properties", "a=1")
	s := newTestSyncer(t, remote, SyncerOptions{FileSets: []FileSet{{SourceFolder: src, BaseName: "messages.properties"}}})

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0o644)
	}()
	if err := s.Watch(ctx, 20*time.Millisecond, nil); err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	if len(remote.calls) != 0 {
		t.Fatalf("expected no push for unrelated files, got %v", remote.calls)
	}
}
