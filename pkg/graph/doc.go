// Package graph provides the serialization types for relaxed network layouts.
//
// This package defines the wire format used for layout files, API responses,
// the result cache and the snapshot store.
//
// # Snapshot Format
//
//	{
//	  "id": "6f1c...",
//	  "created_at": "2026-01-02T15:04:05Z",
//	  "edgeStartPosition": [{"x": 0, "y": 0, "z": 0}],
//	  "edgeEndPosition":   [{"x": 1, "y": 0, "z": 0}],
//	  "posSequence":       [{"x": 0, "y": 0, "z": 0}, {"x": 1, "y": 0, "z": 0}],
//	  "scaleSequence":     [{"x": 1.25, "y": 1.25, "z": 1.25}, {"x": 1.25, "y": 1.25, "z": 1.25}],
//	  "LockedLocations":   [{"x": 0, "y": 0, "z": 0}],
//	  "nodes": [{"id": "a", "position": {...}, "scale": {...}, "locked": true}]
//	}
//
// edgeStartPosition and edgeEndPosition are parallel: entry i holds the two
// endpoint positions of edge i. posSequence and scaleSequence are the keys and
// values of a [ScaleTable]. LockedLocations lists locked node positions in
// rank order.
//
// # Export and Import
//
// [Export] builds a snapshot from a [layout.State]. [ScaleTableFrom] restores
// the scale table and [ApplySnapshot] copies saved node positions back into a
// state so relaxation can resume.
//
// Use [WriteSnapshotFile]/[ReadSnapshotFile] for files and
// [MarshalSnapshot]/[UnmarshalSnapshot] for bytes.
//
// # Scale Table Keys
//
// Positions are compared by exact bit pattern. Two nodes at the same position
// share one table entry and the later one's scale wins.
//
// [layout.State]: github.com/matzehuels/netforce/pkg/core/layout.State
package graph
