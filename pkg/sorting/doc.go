// Package sorting assigns draw-order values to 2D renderers organized in
// nested sorting groups.
//
// # Overview
//
// A [Group] sits on a scene node and owns the renderers and groups below it
// up to the next group down. Every frame the topmost group of each branch
// hands out a descending run of integers, one per renderer, so that:
//
//   - a nested group's renderers occupy one contiguous range inside the
//     range of the group that owns it, and
//   - inside a group, members follow the group's [Mode].
//
// Larger [Renderer.SortOrder] values draw later, on top of smaller ones.
//
// # Membership
//
// [World.Reconcile] keeps a group's member list in step with the scene.
// A renderer belongs to the nearest group at or above its own node; a group
// belongs to the nearest group strictly above it. Destroyed or re-owned
// entries are dropped, new ones are appended, and everything else keeps its
// position, which is what makes [ModeManual] lists stable.
//
// # Modes
//
//   - [ModeManual]: the list order as authored ([World.MoveMember]).
//   - [ModeHierarchy]: later siblings in the scene draw on top.
//   - [ModeIsometric]: members lower on the Y axis draw behind.
//
// Sorting is stable: members with equal keys keep their list order.
//
// # Usage
//
//	tree := scene.NewTree()
//	// ... build nodes ...
//	w := sorting.NewWorld(tree)
//	w.AddRenderer("hero", "hero")
//	w.AddGroup("stage", "stage", sorting.GroupConfig{Mode: sorting.ModeIsometric})
//	if err := w.Update(); err != nil {
//	    // a cycle in the hierarchy
//	}
//
// # Concurrency
//
// A [World] is meant to be driven from a single frame loop and is not safe
// for concurrent use.
package sorting
