package util

import (
	"sync"
)

// RootInode is the inode of "/".
const RootInode uint64 = 1

var (
	highestInode = RootInode
	inodes       = map[string]uint64{"/": RootInode}
	// could use a sync.Map, but paths are written once and read many times
	inodeLock = sync.Mutex{}
)

// InodeFor returns the inode of a virtual path. The first call for a path
// allocates the next free number; later calls, including after the document
// is reloaded, return the same one.
func InodeFor(path string) uint64 {
	inodeLock.Lock()
	defer inodeLock.Unlock()
	if ino, ok := inodes[path]; ok {
		return ino
	}
	highestInode++
	inodes[path] = highestInode
	return highestInode
}
