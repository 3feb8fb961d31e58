package langsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/digitalmediaserver/crowdinsync/internal/crowdin"
	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
)

// fakeRemote is an in-memory project that records every call.
type fakeRemote struct {
	roots []*fakeNode

	calls     []string
	describes int
	creates   []string
	added     map[string][]byte
	updated   map[string]crowdin.FileUpload

	// ignoreCreates makes CreateDirectory succeed without changing the tree.
	ignoreCreates bool
	// createAsFile makes CreateDirectory add a file instead of a folder.
	createAsFile bool
	failOn       map[string]error

	exportStatus crowdin.ExportStatus
	archive      []byte
	status       map[string]string
}

type fakeNode struct {
	name     string
	kind     namespace.Kind
	children []*fakeNode
}

func newFakeRemote(roots ...*fakeNode) *fakeRemote {
	return &fakeRemote{
		roots:        roots,
		added:        map[string][]byte{},
		updated:      map[string]crowdin.FileUpload{},
		failOn:       map[string]error{},
		exportStatus: crowdin.ExportBuilt,
		status:       map[string]string{},
	}
}

func branch(name string, children ...*fakeNode) *fakeNode {
	return &fakeNode{name: name, kind: namespace.KindBranch, children: children}
}

func folder(name string, children ...*fakeNode) *fakeNode {
	return &fakeNode{name: name, kind: namespace.KindFolder, children: children}
}

func file(name string) *fakeNode {
	return &fakeNode{name: name, kind: namespace.KindFile}
}

func toEntries(nodes []*fakeNode) []namespace.Entry {
	out := make([]namespace.Entry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, namespace.Entry{Name: n.name, Kind: n.kind, Children: toEntries(n.children)})
	}
	return out
}

func (f *fakeRemote) record(call string) error {
	f.calls = append(f.calls, call)
	for prefix, err := range f.failOn {
		if strings.HasPrefix(call, prefix) {
			return err
		}
	}
	return nil
}

func (f *fakeRemote) DescribeProject(ctx context.Context) (*namespace.Snapshot, error) {
	f.describes++
	if err := f.record("describe"); err != nil {
		return nil, err
	}
	return namespace.Build(toEntries(f.roots), time.Now())
}

// parent finds the children list at dir below branch, or nil.
func (f *fakeRemote) parent(branchName, dir string) *[]*fakeNode {
	list := &f.roots
	segments := []string{}
	if branchName != "" {
		segments = append(segments, branchName)
	}
	if dir != "" {
		segments = append(segments, strings.Split(dir, "/")...)
	}
	for _, seg := range segments {
		var next *fakeNode
		for _, n := range *list {
			if n.name == seg && n.kind != namespace.KindFile {
				next = n
				break
			}
		}
		if next == nil {
			return nil
		}
		list = &next.children
	}
	return list
}

func splitDir(p string) (string, string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}

func (f *fakeRemote) CreateDirectory(ctx context.Context, branchName, dirPath string, asBranch bool) error {
	call := fmt.Sprintf("create_directory %s", namespace.Join(branchName, dirPath))
	if asBranch {
		call = fmt.Sprintf("create_branch %s", dirPath)
	}
	if err := f.record(call); err != nil {
		return err
	}
	f.creates = append(f.creates, namespace.Join(branchName, dirPath))
	if f.ignoreCreates {
		return nil
	}
	if asBranch {
		f.roots = append(f.roots, branch(dirPath))
		return nil
	}
	dir, name := splitDir(dirPath)
	list := f.parent(branchName, dir)
	if list == nil {
		return fmt.Errorf("parent of %s does not exist", dirPath)
	}
	node := folder(name)
	if f.createAsFile {
		node = file(name)
	}
	*list = append(*list, node)
	return nil
}

func (f *fakeRemote) AddFile(ctx context.Context, branchName string, up crowdin.FileUpload) error {
	full := namespace.Join(branchName, up.Path)
	if err := f.record("add_file " + full); err != nil {
		return err
	}
	dir, name := splitDir(up.Path)
	list := f.parent(branchName, dir)
	if list == nil {
		return fmt.Errorf("folder of %s does not exist", full)
	}
	*list = append(*list, file(name))
	f.added[full] = append([]byte(nil), up.Content...)
	return nil
}

func (f *fakeRemote) UpdateFile(ctx context.Context, branchName string, up crowdin.FileUpload) error {
	full := namespace.Join(branchName, up.Path)
	if err := f.record("update_file " + full); err != nil {
		return err
	}
	f.updated[full] = up
	return nil
}

func (f *fakeRemote) RequestExport(ctx context.Context, branchName string) (crowdin.ExportStatus, error) {
	if err := f.record("export " + branchName); err != nil {
		return "", err
	}
	return f.exportStatus, nil
}

func (f *fakeRemote) DownloadArchive(ctx context.Context, branchName string) (io.ReadCloser, error) {
	if err := f.record("download " + branchName); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(f.archive)), nil
}

func (f *fakeRemote) GetStatus(ctx context.Context, language string) ([]byte, error) {
	if err := f.record("status " + language); err != nil {
		return nil, err
	}
	return []byte(f.status[language]), nil
}

func (f *fakeRemote) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newTestSyncer(t *testing.T, remote *fakeRemote, opts SyncerOptions) *Syncer {
	t.Helper()
	if opts.RootBranch == "" {
		opts.RootBranch = "master"
	}
	if opts.Branches == nil {
		opts.Branches = StaticBranch(opts.RootBranch)
	}
	s, err := NewSyncer(remote, opts)
	if err != nil {
		t.Fatalf("new syncer failed: %v", err)
	}
	return s
}
