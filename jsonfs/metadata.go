package jsonfs

import (
	"os"
	"time"

	"github.com/dendrascience/jsonfs/tree"
)

const (
	fileBasePerm os.FileMode = 0o444
	dirBasePerm  os.FileMode = 0o555
)

// BackingMetadata is the stat and statfs of the backing document. Every
// virtual node shares it.
type BackingMetadata struct {
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
	Uid   uint32
	Gid   uint32
	Nlink uint32

	Volume VolumeMetadata
}

// VolumeMetadata is the statfs of the volume holding the backing document.
type VolumeMetadata struct {
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Bsize   uint32
	Frsize  uint32
	Namelen uint32
}

// Attributes describes one virtual node.
type Attributes struct {
	Kind  tree.Kind
	Mode  os.FileMode
	Size  uint64
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
	Uid   uint32
	Gid   uint32
	Nlink uint32
}

// IsDir reports whether the node is listed as a directory.
func (a Attributes) IsDir() bool { return a.Mode.IsDir() }

// synthesize builds the attributes of n. Size is the length of the
// canonical encoding of n, for containers too.
func synthesize(n tree.Node, meta BackingMetadata) Attributes {
	mode := fileBasePerm
	if tree.IsContainer(n) {
		mode = os.ModeDir | dirBasePerm
	}
	return Attributes{
		Kind:  n.Kind(),
		Mode:  mode,
		Size:  uint64(tree.Size(n)),
		Atime: meta.Atime,
		Mtime: meta.Mtime,
		Ctime: meta.Ctime,
		Uid:   meta.Uid,
		Gid:   meta.Gid,
		Nlink: meta.Nlink,
	}
}
