// Package main provides the jsonfs command-line interface.
//
// jsonfs mounts a single JSON document as a read-only FUSE filesystem.
// Objects and arrays become directories and every other value becomes a
// file whose content is the value's compact JSON encoding. The document can
// be watched and reloaded in place; a failed reload keeps the last good
// version mounted.
//
// The main binary supports multiple subcommands:
//   - mount: Mount a JSON document at a specified mountpoint
//   - validate: Check that documents would load
//   - count: Count the directories and files a mount would expose
//   - seed: Generate a test document
//   - convert: Pack a directory tree into a JSON document
package main
