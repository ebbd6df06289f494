// Package scene defines the read-only view of a host scene graph that the
// sorting core consumes, plus an in-memory [Tree] that implements it.
//
// # Overview
//
// A host engine owns the real transform hierarchy. The sorting core never
// mutates it; it only asks four questions through [Graph]:
//
//   - who is the parent of a node ([Graph.Parent])
//   - where does a node sit among its siblings ([Graph.SiblingIndex])
//   - where is a node in world space ([Graph.WorldPosition])
//   - which nodes live under a node, in preorder ([Graph.Subtree])
//
// Engines adapt their own node type to [Graph]. Tools and tests use [Tree],
// a map-backed hierarchy with translation-only transforms.
//
// # Ancestor Search
//
// [Closest] and [Topmost] walk parent links iteratively, so arbitrarily deep
// hierarchies never grow the call stack. Both keep a visited set and return
// [ErrCycle] if a malformed adapter reports a parent loop.
//
// # Concurrency
//
// [Tree] is not safe for concurrent use. Mutate it between frames, not while
// a sorting pass is reading it.
package scene
