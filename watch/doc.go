// Package watch reports changes to a single file.
//
// The parent directory is watched rather than the file itself, so editors
// and tools that replace the file by renaming a new one into place are seen
// the same way as in-place writes. Bursts of events are coalesced into one
// callback after a quiet period.
package watch
