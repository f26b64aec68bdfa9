package cmd

import (
	"github.com/dendrascience/jsonfs/jsonfs"
	"github.com/dendrascience/jsonfs/tree"
)

// treeStats summarizes what a mount exposes below a node. The node itself
// is not counted.
type treeStats struct {
	Dirs     int
	Files    int
	Bytes    int64
	MaxDepth int
	// Unnamed counts entries left out of listings, with their subtrees.
	Unnamed int
}

func collect(n tree.Node) treeStats {
	var s treeStats
	s.walk(n, 0)
	return s
}

func (s *treeStats) walk(n tree.Node, depth int) {
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	for _, name := range tree.ChildNames(n) {
		if !jsonfs.Nameable(name) {
			s.Unnamed++
			continue
		}
		child, ok := tree.Child(n, name)
		if !ok {
			continue
		}
		if tree.IsContainer(child) {
			s.Dirs++
			s.walk(child, depth+1)
			continue
		}
		s.Files++
		s.Bytes += tree.Size(child)
	}
}
