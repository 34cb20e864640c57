// Package pkg provides the core libraries for the Fix Inventory explorer.
//
// # Overview
//
// Fixexplorer turns a cloud inventory graph export into an interactive
// terminal session. The pkg directory is organized around the data flow:
//
//	Dump file / Remote backend
//	         ↓
//	    [ingest] (streaming pipeline: records + progress)
//	         ↓
//	    [graph] (store → immutable snapshot)
//	         ↓
//	    [layout] (cached or computed positions)
//	         ↓
//	    [camera] + [search] (interactive view state)
//
// # Main Packages
//
// [graph] - Node/edge data model, the per-session store, immutable snapshots
// and the line-delimited dump format.
//
// [ingest] - The ingestion pipeline: local dump files, chunked remote
// streams, and the bundled example dataset. Emits records and progress over
// a channel; only a binary ok/failed outcome escapes.
//
// [client] - Chunked streaming transport against the backend, with the
// subscribe-before-request / teardown-exactly-once discipline.
//
// [server] - Demo server speaking the chunked export protocol, used by
// "fixexplorer serve" and the stream client's tests.
//
// [layout] - Position cache merge, deterministic fallback layout, and
// DOT/SVG export via Graphviz.
//
// [camera] - View state machine: drag with momentum, animated zoom, and
// fly-to-node transitions built on cancellable tweens.
//
// [search] - Debounced, bounded substring search over the snapshot and the
// canned query catalog.
//
// [session] - Per-load session context binding one store to the long-lived
// view components.
//
// [cache], [catalog], [config], [errors], [observability], [buildinfo] -
// supporting infrastructure: byte caches (file/redis/null), the query
// catalog, TOML configuration, structured errors, hook interfaces, and
// build metadata.
//
// [graph]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/graph
// [ingest]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/ingest
// [client]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/client
// [server]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/server
// [layout]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/layout
// [camera]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/camera
// [search]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/search
// [session]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/session
// [cache]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/cache
// [catalog]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/catalog
// [config]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/config
// [errors]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/errors
// [observability]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/lselvakumaran/fixinventory/pkg/buildinfo
package pkg
