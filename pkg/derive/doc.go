// Package derive turns the authoritative node/edge graph into the subgraph a
// view actually renders.
//
// # Overview
//
// [Deriver.Derive] runs on every structural change (load, collapse toggle,
// clustering-feature change) and returns freshly allocated collections. The
// source graph is borrowed read-only: no node, edge, attrs or style word is
// mutated. Callers refresh focus and selection styles separately before
// building a draw plan.
//
// # Collapse
//
// A collapsed node is removed together with the maximal forward-reachable
// sequence whose members have no other surviving predecessor. Shared
// downstream structure survives: in the diamond A→{B,C}→D, collapsing B
// removes only B. A collapsed edge removes itself, its target, and the same
// sequence from the target. Collapsed items are visited in id order and
// successors in edge-id order, so the result never depends on map iteration.
//
// # Clustering
//
// An edge is strong when its endpoints agree on every active clustering
// feature (both absent counts as agreement) and weak otherwise. With no active
// features every edge is strong. Clusters are the connected components of the
// strong-edge subgraph, ignoring direction. Weak edges are still returned for
// rendering but never join clusters.
//
// A strong edge the component search cannot reach from its endpoints means
// the input's adjacency lists disagree with its edge set. Derive fails with
// [*UnlinkedGraphError] instead of dropping it.
package derive
