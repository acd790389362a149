// Package avl provides an ordered multimap backed by a height-balanced binary
// search tree.
//
// Each key maps to an insertion-ordered set of values. Nodes live in a slice
// arena and reference each other by index, so rotations only rewrite child
// indices and never move a node's value set.
//
// # Complexity
//
//   - Insert, Remove, Lookup: O(log n) in the number of keys
//   - Range: O(log n + k) for k returned keys
//
// # Concurrency
//
// A Tree is not safe for concurrent use. Callers serialize access.
package avl
