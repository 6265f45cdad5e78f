// Package graph defines the CSG design graph.
// The design graph is an immutable DAG of primitives, transforms, Boolean
// operations and groups produced by evaluating a design script. Each
// root-level solid is turned into an NMG shell by the tessellator.
package graph
