//go:build linux

package jsonfs

import (
	"time"

	"golang.org/x/sys/unix"
)

// exclusiveLockFlag is the open flag requesting an exclusive lock, where the
// platform has one.
const exclusiveLockFlag = 0

func statBacking(path string) (BackingMetadata, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return BackingMetadata{}, err
	}
	var vfs unix.Statfs_t
	if err := unix.Statfs(path, &vfs); err != nil {
		return BackingMetadata{}, err
	}
	return BackingMetadata{
		Atime: time.Unix(st.Atim.Unix()),
		Mtime: time.Unix(st.Mtim.Unix()),
		Ctime: time.Unix(st.Ctim.Unix()),
		Uid:   st.Uid,
		Gid:   st.Gid,
		Nlink: uint32(st.Nlink),
		Volume: VolumeMetadata{
			Blocks:  vfs.Blocks,
			Bfree:   vfs.Bfree,
			Bavail:  vfs.Bavail,
			Files:   vfs.Files,
			Ffree:   vfs.Ffree,
			Bsize:   uint32(vfs.Bsize),
			Frsize:  uint32(vfs.Frsize),
			Namelen: uint32(vfs.Namelen),
		},
	}, nil
}
