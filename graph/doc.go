// Package graph implements the wallet relationship graph.
//
// Nodes are wallet addresses, created the first time a wallet appears as
// either endpoint of a transaction. Edges are directed and keyed by
// (from, to); each edge aggregates a transaction count, the total volume and
// per-token counts and volumes.
//
// Outgoing edges are kept in the order they were created, which makes
// traversals and tie-breaks deterministic.
//
// The graph is append-only: there is no path for removing transactions.
// Derived views that must forget transactions rebuild the graph from scratch.
package graph
