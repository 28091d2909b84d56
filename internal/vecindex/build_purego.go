//go:build !cgo_sqlite
// +build !cgo_sqlite

package vecindex

// This file is compiled when building without the cgo_sqlite tag.
// It uses a pure Go SQLite implementation for the metadata table.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
