//go:build darwin || freebsd

package jsonfs

import (
	"time"

	"golang.org/x/sys/unix"
)

const exclusiveLockFlag = unix.O_EXLOCK

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
			Blocks:  uint64(vfs.Blocks),
			Bfree:   uint64(vfs.Bfree),
			Bavail:  uint64(vfs.Bavail),
			Files:   uint64(vfs.Files),
			Ffree:   uint64(vfs.Ffree),
			Bsize:   uint32(vfs.Bsize),
			Frsize:  uint32(vfs.Bsize),
			Namelen: 255,
		},
	}, nil
}
