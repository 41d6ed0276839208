//go:build cgo_sqlite

// CGO driver, selected with: go build -tags cgo_sqlite
// Requires CGO_ENABLED=1.

package sqlite

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)
