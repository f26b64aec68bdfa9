package jsonfs

import (
	"context"
	"errors"
	"path"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	platformerrors "github.com/jmgilman/go/errors"

	"github.com/dendrascience/jsonfs/tree"
	"github.com/dendrascience/jsonfs/util"
)

var (
	_ fs.FS         = (*FS)(nil)
	_ fs.FSStatfser = (*FS)(nil)

	_ fs.Node                = (*Dir)(nil)
	_ fs.NodeRequestLookuper = (*Dir)(nil)
	_ fs.HandleReadDirAller  = (*Dir)(nil)
	_ fs.NodeOpener          = (*Dir)(nil)
	_ fs.NodeAccesser        = (*Dir)(nil)
	_ fs.NodeCreater         = (*Dir)(nil)
	_ fs.NodeMkdirer         = (*Dir)(nil)
	_ fs.NodeMknoder         = (*Dir)(nil)
	_ fs.NodeRemover         = (*Dir)(nil)
	_ fs.NodeRenamer         = (*Dir)(nil)
	_ fs.NodeLinker          = (*Dir)(nil)
	_ fs.NodeSymlinker       = (*Dir)(nil)
	_ fs.NodeSetattrer       = (*Dir)(nil)
	_ fs.NodeSetxattrer      = (*Dir)(nil)
	_ fs.NodeRemovexattrer   = (*Dir)(nil)

	_ fs.Node              = (*File)(nil)
	_ fs.NodeOpener        = (*File)(nil)
	_ fs.NodeAccesser      = (*File)(nil)
	_ fs.NodeReadlinker    = (*File)(nil)
	_ fs.NodeSetattrer     = (*File)(nil)
	_ fs.NodeSetxattrer    = (*File)(nil)
	_ fs.NodeRemovexattrer = (*File)(nil)
	_ fs.NodeFsyncer       = (*File)(nil)
	_ fs.HandleReader      = (*File)(nil)
	_ fs.HandleWriter      = (*File)(nil)
	_ fs.HandleFlusher     = (*File)(nil)
	_ fs.HandleReleaser    = (*File)(nil)
)

// Options tunes how the kernel caches what the filesystem serves.
type Options struct {
	// AttrValid is how long the kernel may cache attributes and lookups.
	AttrValid time.Duration

	// DirectIO bypasses the page cache so reloaded content is visible
	// immediately. Enabled when the document is watched.
	DirectIO bool
}

// FS exposes a Store through bazil.org/fuse. Nodes are addressed by path
// and resolved against the current generation on every request, so they
// stay usable across reloads.
type FS struct {
	store *Store
	opts  Options
}

// NewFS creates a filesystem serving store.
func NewFS(store *Store, opts Options) *FS {
	return &FS{store: store, opts: opts}
}

// Store returns the store backing the filesystem.
func (f *FS) Store() *Store { return f.store }

// Root returns the root directory node
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f, path: "/"}, nil
}

// Statfs reports the volume holding the backing document.
func (f *FS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	vol, err := f.store.VolumeAttributes("/")
	if err != nil {
		return toErrno(err)
	}
	resp.Blocks = vol.Blocks
	resp.Bfree = vol.Bfree
	resp.Bavail = vol.Bavail
	resp.Files = vol.Files
	resp.Ffree = vol.Ffree
	resp.Bsize = vol.Bsize
	resp.Frsize = vol.Frsize
	resp.Namelen = vol.Namelen
	return nil
}

func (f *FS) attr(p string, a *fuse.Attr) error {
	attrs, err := f.store.Attributes(p)
	if err != nil {
		return toErrno(err)
	}
	a.Valid = f.opts.AttrValid
	a.Inode = util.InodeFor(p)
	a.Mode = attrs.Mode
	a.Size = attrs.Size
	a.Blocks = (attrs.Size + 511) / 512
	a.Atime = attrs.Atime
	a.Mtime = attrs.Mtime
	a.Ctime = attrs.Ctime
	a.Nlink = attrs.Nlink
	a.Uid = attrs.Uid
	a.Gid = attrs.Gid
	return nil
}

func (f *FS) node(p string, n tree.Node) fs.Node {
	if tree.IsContainer(n) {
		return &Dir{fs: f, path: p}
	}
	return &File{fs: f, path: p}
}

// Dir is a container node: a JSON object or array.
type Dir struct {
	fs   *FS
	path string
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	return d.fs.attr(d.path, a)
}

// Lookup resolves a child of the directory in the current generation.
func (d *Dir) Lookup(ctx context.Context, req *fuse.LookupRequest, resp *fuse.LookupResponse) (fs.Node, error) {
	p := tree.Join(d.path, req.Name)
	n, err := d.fs.store.Resolve(p)
	if err != nil {
		return nil, toErrno(err)
	}
	resp.EntryValid = d.fs.opts.AttrValid
	return d.fs.node(p, n), nil
}

// ReadDirAll lists directory contents
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	gen := d.fs.store.Snapshot()
	names, err := gen.List(d.path)
	if err != nil {
		return nil, toErrno(err)
	}
	n, err := gen.Resolve(d.path)
	if err != nil {
		return nil, toErrno(err)
	}

	dirents := make([]fuse.Dirent, 0, len(names))
	for _, name := range names {
		switch name {
		case ".":
			dirents = append(dirents, fuse.Dirent{Inode: util.InodeFor(d.path), Name: name, Type: fuse.DT_Dir})
			continue
		case "..":
			dirents = append(dirents, fuse.Dirent{Inode: util.InodeFor(path.Dir(d.path)), Name: name, Type: fuse.DT_Dir})
			continue
		}
		if !Nameable(name) {
			continue
		}
		child, ok := tree.Child(n, name)
		if !ok {
			continue
		}
		typ := fuse.DT_File
		if tree.IsContainer(child) {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: util.InodeFor(tree.Join(d.path, name)),
			Name:  name,
			Type:  typ,
		})
	}
	return dirents, nil
}

// Open permits read-only opens of an existing directory.
func (d *Dir) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	if err := d.fs.store.Open(d.path, int(req.Flags)); err != nil {
		return nil, toErrno(err)
	}
	return d, nil
}

func (d *Dir) Access(ctx context.Context, req *fuse.AccessRequest) error {
	return toErrno(d.fs.store.Access(d.path, req.Mask))
}

func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	return nil, nil, toErrno(Reject(OpCreate))
}

func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	return nil, toErrno(Reject(OpMkdir))
}

func (d *Dir) Mknod(ctx context.Context, req *fuse.MknodRequest) (fs.Node, error) {
	return nil, toErrno(Reject(OpMknod))
}

func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	if req.Dir {
		return toErrno(Reject(OpRmdir))
	}
	return toErrno(Reject(OpUnlink))
}

func (d *Dir) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fs.Node) error {
	return toErrno(Reject(OpRename))
}

func (d *Dir) Link(ctx context.Context, req *fuse.LinkRequest, old fs.Node) (fs.Node, error) {
	return nil, toErrno(Reject(OpLink))
}

func (d *Dir) Symlink(ctx context.Context, req *fuse.SymlinkRequest) (fs.Node, error) {
	return nil, toErrno(Reject(OpSymlink))
}

func (d *Dir) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	return toErrno(Reject(setattrOp(req)))
}

func (d *Dir) Setxattr(ctx context.Context, req *fuse.SetxattrRequest) error {
	return toErrno(Reject(OpSetxattr))
}

func (d *Dir) Removexattr(ctx context.Context, req *fuse.RemovexattrRequest) error {
	return toErrno(Reject(OpRemovexattr))
}

// File is a scalar node. It is its own handle.
type File struct {
	fs   *FS
	path string
}

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	return f.fs.attr(f.path, a)
}

// Open permits read-only opens of an existing file.
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	if err := f.fs.store.Open(f.path, int(req.Flags)); err != nil {
		return nil, toErrno(err)
	}
	if f.fs.opts.DirectIO {
		resp.Flags |= fuse.OpenDirectIO
	}
	return f, nil
}

// Read serves a byte range of the canonical encoding of the value.
func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := f.fs.store.Read(f.path, req.Offset, req.Size)
	if err != nil {
		return toErrno(err)
	}
	resp.Data = data
	return nil
}

func (f *File) Access(ctx context.Context, req *fuse.AccessRequest) error {
	return toErrno(f.fs.store.Access(f.path, req.Mask))
}

func (f *File) Readlink(ctx context.Context, req *fuse.ReadlinkRequest) (string, error) {
	target, err := f.fs.store.Readlink(f.path)
	return target, toErrno(err)
}

func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	return toErrno(Reject(OpWrite))
}

func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	return toErrno(Reject(setattrOp(req)))
}

func (f *File) Setxattr(ctx context.Context, req *fuse.SetxattrRequest) error {
	return toErrno(Reject(OpSetxattr))
}

func (f *File) Removexattr(ctx context.Context, req *fuse.RemovexattrRequest) error {
	return toErrno(Reject(OpRemovexattr))
}

// Flush, Fsync and Release have nothing to persist.
func (f *File) Flush(ctx context.Context, req *fuse.FlushRequest) error     { return nil }
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error     { return nil }
func (f *File) Release(ctx context.Context, req *fuse.ReleaseRequest) error { return nil }

func setattrOp(req *fuse.SetattrRequest) Op {
	switch {
	case req.Valid.Size():
		return OpTruncate
	case req.Valid.Mode():
		return OpChmod
	case req.Valid.Uid(), req.Valid.Gid():
		return OpChown
	default:
		return OpUtimens
	}
}

// toErrno maps package errors onto the errno the kernel reports.
func toErrno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return fuse.ENOENT
	case errors.Is(err, ErrNotDirectory):
		return fuse.Errno(syscall.ENOTDIR)
	case errors.Is(err, ErrIsDirectory):
		return fuse.Errno(syscall.EISDIR)
	case errors.Is(err, ErrReadOnly):
		return fuse.Errno(syscall.EROFS)
	case errors.Is(err, ErrInvalidRequest):
		return fuse.Errno(syscall.EINVAL)
	case errors.Is(err, ErrPermission):
		return fuse.Errno(syscall.EACCES)
	}
	switch platformerrors.GetCode(err) {
	case platformerrors.CodeNotFound:
		return fuse.ENOENT
	case platformerrors.CodeForbidden:
		return fuse.Errno(syscall.EACCES)
	case platformerrors.CodeInvalidInput:
		return fuse.Errno(syscall.EINVAL)
	case platformerrors.CodeUnavailable:
		return fuse.Errno(syscall.EAGAIN)
	default:
		return fuse.EIO
	}
}
