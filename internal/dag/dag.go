package dag

import (
	"fmt"
	"slices"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:  id,
		out: make(map[string]*node),
	}
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// An error is returned if either node does not exist. A node may point to
// itself; that edge is a cycle of length one. Adding an edge twice has no
// effect.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	fromNode.out[toID] = toNode

	return nil
}

// Cycles returns one cycle for every back edge met by a depth-first search
// that visits nodes and edges in ID order, so the result is stable. Each
// cycle lists its nodes in edge order; the edge from the last node to the
// first one closes it.
func (g *Graph) Cycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.nodes))
	var (
		stack  []string
		cycles [][]string
	)

	var visit func(n *node)
	visit = func(n *node) {
		state[n.id] = active
		stack = append(stack, n.id)

		for _, next := range sortedKeys(n.out) {
			switch state[next] {
			case active:
				start := slices.Index(stack, next)
				cycles = append(cycles, slices.Clone(stack[start:]))
			case unvisited:
				visit(n.out[next])
			}
		}

		stack = stack[:len(stack)-1]
		state[n.id] = done
	}

	for _, id := range sortedKeys(g.nodes) {
		if state[id] == unvisited {
			visit(g.nodes[id])
		}
	}
	return cycles
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
