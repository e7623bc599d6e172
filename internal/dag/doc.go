// Package dag holds a small directed graph used to follow file references
// between the documents of a workspace. Nodes are identified by string IDs,
// usually document paths; an edge from A to B means A refers to B.
//
// The graph does not forbid cycles. Finding them is its main job: a cycle
// means a set of files each claiming a definition lives in the next one.
package dag
