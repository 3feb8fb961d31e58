// Package namespace models the remote project tree (branches, folders and
// files) as returned by a single describe call, and resolves slash-delimited
// paths against it.
package namespace

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the variant of a Node.
type Kind uint8

const (
	KindBranch Kind = 1 << iota
	KindFolder
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "branch"
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// KindSet is a lookup filter. The empty set accepts every kind.
type KindSet uint8

// Kinds builds a filter from the given kinds.
func Kinds(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= KindSet(k)
	}
	return s
}

const (
	// Any accepts every kind.
	Any KindSet = 0
	// Containers accepts the kinds that may hold children.
	Containers = KindSet(KindBranch | KindFolder)
	// Files accepts only file nodes.
	Files = KindSet(KindFile)
)

// Has reports whether k passes the filter.
func (s KindSet) Has(k Kind) bool {
	return s == 0 || s&KindSet(k) != 0
}

func (s KindSet) String() string {
	if s == 0 {
		return "any"
	}
	var parts []string
	for _, k := range []Kind{KindBranch, KindFolder, KindFile} {
		if s&KindSet(k) != 0 {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "|")
}

// Container is anything whose direct children can be searched: a Snapshot,
// a Branch or a Folder.
type Container interface {
	Children() []Node
}

// Node is one of *Branch, *Folder or *File.
type Node interface {
	Name() string
	// Path is the slash-delimited path from the namespace root, branch name
	// included.
	Path() string
	Kind() Kind
	// Children returns nil for files.
	Children() []Node

	sealed()
}

type base struct {
	name string
	path string
}

func (b *base) Name() string { return b.name }
func (b *base) Path() string { return b.path }
func (b *base) sealed()      {}

type container struct {
	children []Node
}

func (c *container) Children() []Node { return c.children }

// Branch is a namespace partition mirroring a VCS branch. Branches only
// appear at the namespace root.
type Branch struct {
	base
	container
}

func (*Branch) Kind() Kind { return KindBranch }

// Folder groups files and other folders.
type Folder struct {
	base
	container
}

func (*Folder) Kind() Kind { return KindFolder }

// File is a leaf.
type File struct {
	base
}

func (*File) Kind() Kind       { return KindFile }
func (*File) Children() []Node { return nil }

// Entry is the wire-neutral description of a node, as decoded by a remote
// client before the tree is built.
type Entry struct {
	Name     string
	Kind     Kind
	Children []Entry
}

// Snapshot is the immutable tree produced by one describe call.
type Snapshot struct {
	roots     []Node
	FetchedAt time.Time
}

// Children returns the nodes at the namespace root.
func (s *Snapshot) Children() []Node {
	if s == nil {
		return nil
	}
	return s.roots
}

// Build constructs a Snapshot from decoded entries.
func Build(entries []Entry, fetchedAt time.Time) (*Snapshot, error) {
	roots, err := buildChildren(entries, "", true)
	if err != nil {
		return nil, err
	}
	return &Snapshot{roots: roots, FetchedAt: fetchedAt}, nil
}

func buildChildren(entries []Entry, parentPath string, atRoot bool) ([]Node, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		node, err := buildNode(entry, parentPath, atRoot)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func buildNode(entry Entry, parentPath string, atRoot bool) (Node, error) {
	name := entry.Name
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("namespace: unnamed %s under %q", entry.Kind, displayPath(parentPath))
	}
	if strings.TrimSpace(name) != name {
		return nil, fmt.Errorf("namespace: node name %q has leading or trailing whitespace", name)
	}
	if strings.Contains(name, "/") {
		return nil, fmt.Errorf("namespace: node name %q contains a slash", name)
	}
	nodePath := Join(parentPath, name)
	switch entry.Kind {
	case KindBranch:
		if !atRoot {
			return nil, fmt.Errorf("namespace: branch %q is not at the namespace root", nodePath)
		}
		children, err := buildChildren(entry.Children, nodePath, false)
		if err != nil {
			return nil, err
		}
		return &Branch{base: base{name: name, path: nodePath}, container: container{children: children}}, nil
	case KindFolder:
		children, err := buildChildren(entry.Children, nodePath, false)
		if err != nil {
			return nil, err
		}
		return &Folder{base: base{name: name, path: nodePath}, container: container{children: children}}, nil
	case KindFile:
		if len(entry.Children) > 0 {
			return nil, fmt.Errorf("namespace: file %q has children", nodePath)
		}
		return &File{base: base{name: name, path: nodePath}}, nil
	default:
		return nil, fmt.Errorf("namespace: %q has unknown kind %s", nodePath, entry.Kind)
	}
}

// Walk visits every node below c depth-first, parents before children, in
// sibling order. Returning a non-nil error from fn stops the walk.
func Walk(c Container, fn func(depth int, n Node) error) error {
	return walk(c, 0, fn)
}

func walk(c Container, depth int, fn func(int, Node) error) error {
	for _, child := range c.Children() {
		if err := fn(depth, child); err != nil {
			return err
		}
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes below c.
func Count(c Container) int {
	n := 0
	_ = Walk(c, func(int, Node) error {
		n++
		return nil
	})
	return n
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
