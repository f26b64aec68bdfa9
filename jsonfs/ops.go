package jsonfs

import (
	"os"
	"strings"

	"github.com/dendrascience/jsonfs/tree"
)

// access(2) mask bits.
const (
	accessExec  = 0x1
	accessWrite = 0x2
)

// Resolve returns the node at path in this generation.
func (g *Generation) Resolve(path string) (tree.Node, error) {
	return tree.Resolve(g.Document.Root, path)
}

// List returns ".", ".." and the entry names of the container at path.
// The result is built fresh on every call.
func (g *Generation) List(path string) ([]string, error) {
	node, err := g.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !tree.IsContainer(node) {
		return nil, ErrNotDirectory
	}
	return append([]string{".", ".."}, tree.ChildNames(node)...), nil
}

// Read returns up to length bytes of the file at path starting at offset.
// Reads past the end return an empty slice, never padding.
func (g *Generation) Read(path string, offset int64, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, ErrInvalidRequest
	}
	node, err := g.Resolve(path)
	if err != nil {
		return nil, err
	}
	if tree.IsContainer(node) {
		return nil, ErrIsDirectory
	}

	content := tree.Encode(node)
	if offset >= int64(len(content)) {
		return []byte{}, nil
	}
	end := offset + int64(length)
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return content[offset:end], nil
}

// Resolve returns the node at path in the current generation.
func (s *Store) Resolve(path string) (tree.Node, error) {
	return s.Snapshot().Resolve(path)
}

// Attributes returns the attributes of the node at path. Owner, times and
// link count come from the backing file.
func (s *Store) Attributes(path string) (Attributes, error) {
	gen := s.Snapshot()
	node, err := gen.Resolve(path)
	if err != nil {
		return Attributes{}, err
	}
	return synthesize(node, s.metadata(gen)), nil
}

// VolumeAttributes returns the statfs of the backing volume once path is
// known to exist. The result does not depend on which node path names.
func (s *Store) VolumeAttributes(path string) (VolumeMetadata, error) {
	gen := s.Snapshot()
	if _, err := gen.Resolve(path); err != nil {
		return VolumeMetadata{}, err
	}
	return s.metadata(gen).Volume, nil
}

// List is Generation.List on the current generation.
func (s *Store) List(path string) ([]string, error) {
	return s.Snapshot().List(path)
}

// Read is Generation.Read on the current generation.
func (s *Store) Read(path string, offset int64, length int) ([]byte, error) {
	return s.Snapshot().Read(path, offset, length)
}

// Open checks an open(2) of path with flags. Any write intent is refused
// before the path is looked at.
func (s *Store) Open(path string, flags int) error {
	if writeIntent(flags) {
		return Reject(OpWrite)
	}
	_, err := s.Resolve(path)
	return err
}

// Access checks an access(2) of path with mask.
func (s *Store) Access(path string, mask uint32) error {
	node, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if mask&accessWrite != 0 {
		return ErrReadOnly
	}
	if mask&accessExec != 0 && !tree.IsContainer(node) {
		return ErrPermission
	}
	return nil
}

// Readlink always fails: the mapping has no symbolic links.
func (s *Store) Readlink(string) (string, error) {
	return "", ErrInvalidRequest
}

func writeIntent(flags int) bool {
	const accmode = os.O_RDONLY | os.O_WRONLY | os.O_RDWR
	if flags&accmode != os.O_RDONLY {
		return true
	}
	return flags&(os.O_APPEND|os.O_CREATE|os.O_TRUNC|os.O_EXCL|exclusiveLockFlag) != 0
}

// Nameable reports whether an object key can be a directory entry name.
// Keys that are empty, "." or "..", or contain '/' or NUL still resolve
// from the tree but are left out of kernel listings.
func Nameable(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\x00")
}
