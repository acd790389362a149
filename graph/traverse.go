package graph

import (
	"fmt"
	"slices"
)

// BFS returns the wallets reachable from start over outgoing edges in
// breadth-first order, start first. Each wallet appears once.
func (g *Graph) BFS(start string) ([]string, error) {
	s, err := g.lookup(start)
	if err != nil {
		return nil, err
	}
	visited := make([]bool, len(g.nodes))
	visited[s] = true
	queue := []int32{s}
	var order []string
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, g.nodes[u].wallet)
		for _, ei := range g.nodes[u].out {
			if v := g.edges[ei].to; !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return order, nil
}

// DFS returns the wallets reachable from start over outgoing edges in
// depth-first pre-order. Outgoing edges are explored in creation order.
func (g *Graph) DFS(start string) ([]string, error) {
	s, err := g.lookup(start)
	if err != nil {
		return nil, err
	}
	visited := make([]bool, len(g.nodes))
	stack := []int32{s}
	var order []string
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true
		order = append(order, g.nodes[u].wallet)
		// Push in reverse so the first edge is explored first.
		out := g.nodes[u].out
		for i := len(out) - 1; i >= 0; i-- {
			if v := g.edges[out[i]].to; !visited[v] {
				stack = append(stack, v)
			}
		}
	}
	return order, nil
}

// ShortestPath returns a fewest-hop directed path from src to dst, both
// included. It fails with ErrNotFound if src is unknown or dst unreachable.
func (g *Graph) ShortestPath(src, dst string) ([]string, error) {
	s, err := g.lookup(src)
	if err != nil {
		return nil, err
	}
	d, ok := g.byWallet[dst]
	if !ok {
		return nil, fmt.Errorf("%w: no path from %q to %q", ErrNotFound, src, dst)
	}
	if s == d {
		return []string{src}, nil
	}

	parent := make([]int32, len(g.nodes))
	for i := range parent {
		parent[i] = -1
	}
	parent[s] = s
	queue := []int32{s}
	for len(queue) > 0 && parent[d] < 0 {
		u := queue[0]
		queue = queue[1:]
		for _, ei := range g.nodes[u].out {
			if v := g.edges[ei].to; parent[v] < 0 {
				parent[v] = u
				queue = append(queue, v)
			}
		}
	}
	if parent[d] < 0 {
		return nil, fmt.Errorf("%w: no path from %q to %q", ErrNotFound, src, dst)
	}

	var path []string
	for v := d; v != s; v = parent[v] {
		path = append(path, g.nodes[v].wallet)
	}
	path = append(path, src)
	slices.Reverse(path)
	return path, nil
}
