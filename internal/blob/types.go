// Package blob is the facade over document storage: receipt scans attached
// by the user, raw receipt payloads archived after reconciliation, and full
// JSON export snapshots. Callers import this package only; the filesystem,
// memory, and S3 backends stay behind internal/infra/blob.
package blob

import (
	"pantrycore/internal/blob/core"
)

type (
	// Driver identifies a document storage driver.
	Driver = core.Driver
	// PutOptions configures a document write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored document metadata.
	Info = core.Info
	// Store is the interface implemented by document storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = core.ErrUnsupported
