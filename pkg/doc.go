// Package pkg provides the core libraries for netforce force-directed
// network layouts.
//
// # Overview
//
// Netforce reads a network from XML, seeds every node at a random point in 3D
// space and relaxes the layout: connected nodes are pulled toward a desired
// distance by a spring force, all other pairs push apart with an
// inverse-square repulsion. The highest-degree nodes are locked as anchors.
//
// The typical data flow:
//
//	XML source
//	    ↓
//	[io] package (two-pass loader, dangling edges become warnings)
//	    ↓
//	[core/network] package (nodes, edges, adjacency)
//	    ↓
//	[core/layout] package (simulation state, degree ranking, placement)
//	    ↓
//	[core/force] package (batched or continuous relaxation)
//	    ↓
//	[graph] package (snapshot: edge endpoints, scale table, locked positions)
//
// # Quick Start
//
//	res, _ := io.ImportXML("network.xml", io.LoadOptions{Seed: 42})
//	st, _ := layout.NewState(res.Graphs[0], layout.DefaultOptions())
//	engine, _ := force.New(st, force.DefaultParams())
//
//	sched := force.DefaultSchedule()
//	sched.MaxBatches = 20
//	stats, _ := engine.RunBatched(ctx, sched)
//
//	snap := graph.Export(st)
//	snap.Stats = &stats
//	_ = graph.WriteSnapshotFile(snap, "network.layout.json")
//
// # Main Packages
//
// [core/geom] - float64 3D vectors and exact bit-pattern position keys.
//
// [core/network] - The graph model. Node order is insertion order and can be
// replaced by an alternate order of parse ranks; edges are resolved node
// references.
//
// [core/layout] - Per-node simulation state, connected and disconnected peer
// lists, degree ranking of the locked nodes and the ring and cone seed
// placements.
//
// [core/force] - The force law and its two schedules: [force.Engine.RunBatched]
// for background passes and [force.Engine.Advance] for one tick per frame.
//
// [graph] - Snapshot export, import and JSON files.
//
// [io] - The XML loader and alternate order files.
//
// ## Infrastructure
//
// [pipeline] - Parse, prepare, relax and export with caching, plus the TOML
// config file. Used by both the CLI and the HTTP API.
//
// [cache] - Layout cache backends: file (CLI), redis (server) and null.
//
// [store] - Snapshot stores: one JSON file per snapshot, or MongoDB.
//
// [observability] - Hook interfaces for metrics, no-ops by default.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/core/force/...      # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// Live backend tests run when NETFORCE_TEST_REDIS or NETFORCE_TEST_MONGO is set.
//
// [core/geom]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/core/geom
// [core/network]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/core/network
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/core/layout
// [core/force]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/core/force
// [graph]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/netforce/pkg/errors
package pkg
