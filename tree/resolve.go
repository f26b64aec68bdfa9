package tree

import (
	"strconv"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
)

// ErrNotFound is the single outcome of every failed resolution.
var ErrNotFound = platformerrors.New(platformerrors.CodeNotFound, "no such node")

// Resolve walks path from root. "/" is root itself.
func Resolve(root Node, path string) (Node, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, ErrNotFound
	}
	if path == "/" {
		return root, nil
	}
	node := root
	for _, segment := range strings.Split(path[1:], "/") {
		next, ok := Child(node, segment)
		if !ok {
			return nil, ErrNotFound
		}
		node = next
	}
	return node, nil
}

// Child returns the child of n named name. Array children are named by
// their canonical index.
func Child(n Node, name string) (Node, bool) {
	if name == "" {
		return nil, false
	}
	switch v := n.(type) {
	case *Object:
		return v.Get(name)
	case *Array:
		i, ok := ParseIndex(name)
		if !ok {
			return nil, false
		}
		return v.At(i)
	default:
		return nil, false
	}
}

// ChildNames returns the entry names of a container in listing order, or
// nil for a scalar.
func ChildNames(n Node) []string {
	switch v := n.(type) {
	case *Object:
		return v.Keys()
	case *Array:
		names := make([]string, v.Len())
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		return names
	default:
		return nil
	}
}

// ParseIndex accepts only the canonical decimal form of a non-negative
// integer: no sign, no leading zeros, no fraction.
func ParseIndex(s string) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || strconv.Itoa(i) != s {
		return 0, false
	}
	return i, true
}

// Join appends name to a resolved path.
func Join(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// Walk calls fn for n and every descendant, parents before children.
// Returning a non-nil error stops the walk.
func Walk(root Node, fn func(path string, n Node) error) error {
	return walk("/", root, fn)
}

func walk(path string, n Node, fn func(string, Node) error) error {
	if err := fn(path, n); err != nil {
		return err
	}
	switch v := n.(type) {
	case *Object:
		for i, k := range v.keys {
			if err := walk(Join(path, k), v.values[i], fn); err != nil {
				return err
			}
		}
	case *Array:
		for i, item := range v.items {
			if err := walk(Join(path, strconv.Itoa(i)), item, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
