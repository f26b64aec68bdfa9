// Package tree models a parsed JSON document as an immutable tree of nodes.
//
// A Node is one of six variants: *Object, *Array, String, Number, Bool and Null.
// Objects and Arrays are containers and appear as directories when the tree is
// mounted; every other variant is a scalar and appears as a file whose content
// is the canonical encoding returned by Encode.
//
// Objects keep their members in document order. Numbers keep the literal text
// they were written with, so encoding a parsed document never rewrites 1.0 as 1
// or 1e3 as 1000.
//
// Paths are slash separated and always absolute. Resolve walks a path one
// segment at a time; any failure (missing key, bad index, descending into a
// scalar) is reported as ErrNotFound.
package tree
