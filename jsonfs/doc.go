// Package jsonfs implements a read-only FUSE filesystem over a single JSON document.
//
// JSON objects and arrays appear as directories and every other value appears
// as a file whose content is the compact JSON encoding of the value, so
// `cat` on a string shows it with its quotes and `cat` on a number shows the
// literal from the document.
//
// The package is split in two layers:
//   - Store holds the parsed document as an immutable Generation and
//     implements the filesystem semantics on paths: Attributes,
//     VolumeAttributes, List, Read, Open, Access and Readlink.
//   - FS, Dir and File adapt the store to bazil.org/fuse.
//
// Every mutating operation fails with ErrReadOnly (EROFS). The document only
// changes through Store.Reload, which parses the backing file again and swaps
// in a new generation atomically. A reload that fails leaves the previous
// generation in place; operations already running, and the ones that follow,
// keep seeing a complete document.
//
// The main entry point is Open, which loads the document, followed by NewFS,
// which produces an fs.FS that can be passed to fs.Serve.
package jsonfs
