package namespace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no node of an accepted kind exists at a
	// path. A same-named node of the wrong kind also yields ErrNotFound.
	ErrNotFound = errors.New("namespace: not found")
	// ErrEmptyPath is returned for an empty path or one with an empty segment.
	ErrEmptyPath = errors.New("namespace: empty path")
)

// NotFoundError carries the path and filter of a failed lookup.
type NotFoundError struct {
	Path   string
	Filter KindSet
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("namespace: no %s at %q", e.Filter, e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Resolve navigates c by a slash-delimited path. Every segment but the last
// must name a branch or folder; the last must name a node whose kind passes
// filter.
func Resolve(c Container, path string, filter KindSet) (Node, error) {
	segments, err := Split(path)
	if err != nil {
		return nil, err
	}
	node, ok := resolve(c, segments, filter)
	if !ok {
		return nil, &NotFoundError{Path: strings.Join(segments, "/"), Filter: filter}
	}
	return node, nil
}

// Lookup resolves path without a kind filter on the final segment. Callers
// that must tell "missing" apart from "wrong kind" use it after a filtered
// Resolve has failed.
func Lookup(c Container, path string) (Node, bool) {
	segments, err := Split(path)
	if err != nil {
		return nil, false
	}
	return resolve(c, segments, Any)
}

func resolve(c Container, segments []string, filter KindSet) (Node, bool) {
	if len(segments) == 1 {
		return child(c, segments[0], filter)
	}
	next, ok := child(c, segments[0], Containers)
	if !ok {
		return nil, false
	}
	return resolve(next, segments[1:], filter)
}

func child(c Container, name string, filter KindSet) (Node, bool) {
	if c == nil {
		return nil, false
	}
	for _, n := range c.Children() {
		if n.Name() == name && filter.Has(n.Kind()) {
			return n, true
		}
	}
	return nil, false
}

// Split breaks a path into segments, ignoring leading and trailing slashes.
func Split(path string) ([]string, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return nil, ErrEmptyPath
	}
	segments := strings.Split(trimmed, "/")
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrEmptyPath, path)
		}
	}
	return segments, nil
}

// Join concatenates path segments with single slashes, skipping empty ones.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}
