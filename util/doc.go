// Package util provides small helpers shared by the jsonfs packages.
//
// Inodes:
//   - InodeFor hands out a stable inode per virtual path, starting with
//     RootInode for "/". Numbers are never reused, so a path keeps its inode
//     across document reloads and two paths never share one.
//
// Startup checks:
//   - RequireRegularFile and RequireDirectory validate the backing document
//     and the mountpoint before anything is mounted.
//
// Hashing:
//   - HashBytes, GetHash and GetFileHash return hex SHA-256 digests; the
//     store tags every loaded generation with the digest of its source, and
//     validate compares it against the file on disk.
package util
