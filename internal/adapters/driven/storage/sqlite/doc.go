// Package sqlite provides a SQLite-based implementation of the metadata
// store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. A single
// database file holds the station/section taxonomy and all content
// records.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. The natural keys of the taxonomy (station
// name, section title per station) are UNIQUE constraints, so the
// reconciler's find-or-create loop is race-free at the database level.
//
// # Data Location
//
// By default, the database is stored at ~/.kontent/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
