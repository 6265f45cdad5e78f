// Package nmg implements a non-manifold geometry boundary representation.
//
// A Store owns every topological record of one or more models. The
// hierarchy is Model → Region → Shell → Faceuse → Loopuse → Edgeuse →
// Vertexuse. Every "use" is a directed occurrence of an undirected Face,
// Loop, Edge or Vertex, and uses come in mated pairs so that both sides
// of a face and both directions of an edge are always represented.
//
// Records are addressed by typed arena indices; zero is never a valid ID.
// Sibling collections are intrusive circular doubly-linked lists threaded
// through the records themselves. Editing primitives (the Make*, Kill*,
// Split*, Move* and Cut* methods) are the only way to change the graph and
// each one either leaves every invariant intact or returns an error that
// wraps one of the sentinel kinds in errors.go.
//
// A Store is not safe for concurrent use.
package nmg
