// Package io reads and writes scene files: a node hierarchy with the
// renderers and sorting groups attached to it.
//
// # Formats
//
// Scenes can be stored as JSON, TOML, or YAML. The format is picked from the
// file extension (.json, .toml, .yaml/.yml) by [Load] and [Export], or given
// explicitly to [Read] and [Write]. All three encode the same document:
//
//	{
//	  "nodes": [
//	    {"id": "room", "group": {"mode": "hierarchy"}},
//	    {"id": "rug", "parent": "room", "renderer": {}},
//	    {"id": "table", "parent": "room", "position": {"y": 2},
//	     "group": {"mode": "manual", "members": ["plate", "cup"]}},
//	    {"id": "cup", "parent": "table", "renderer": {"layer": "Props"}},
//	    {"id": "plate", "parent": "table", "renderer": {}}
//	  ]
//	}
//
// # Node Fields
//
//   - id: unique node identifier; a random UUID is filled in when omitted
//   - name: display name, defaults to the id
//   - parent: id of the parent node, empty for scene roots
//   - position: local translation {x, y, z} relative to the parent
//   - renderer: attaches a renderer {name, layer}
//   - group: attaches a sorting group {mode, layer, iso_scale, disabled, members}
//
// Sibling order is the order nodes appear in the file. A node may appear
// before its parent.
//
// For manual groups, members lists node ids in draw order, front first.
// Entries that the group does not own are ignored; ids that are not in the
// scene at all are an error. Owned members missing from the list are
// appended in scene order.
//
// # Orders
//
// [Orders] flattens the result of a pass into one row per renderer and
// [WriteOrders] encodes those rows as JSON for other tools.
package io
