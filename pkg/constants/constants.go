// Package constants provides shared constants used throughout the catalog:
// file permissions, timestamp layouts and metadata layout names.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the permission set on every metadata document
	// (rw-r--r--). The web front end reads them as a different user.
	FilePermissions = 0644
)

// Timestamp layouts shared by documents, paths and file names.
const (
	// StampLayout is the fixed-width numeric timestamp used in documents
	// (lastReloadTime, publishTime, valid).
	StampLayout = "200601021504"

	// RunFileLayout names a run document: metadata/products/<id>/<layout>.json
	RunFileLayout = "2006010215" + "00"

	// RunDirLayout is the run directory below a product path.
	RunDirLayout = "2006/01/02/1500"

	// RunNameLayout is the human-readable run label.
	RunNameLayout = "02 Jan 2006 1500Z"

	// FrameNameLayout is the frame file stem: minutes past the hour.
	FrameNameLayout = "04"
)

// Metadata layout below the output root.
const (
	// MetadataDir holds every catalog document
	MetadataDir = "metadata"

	// ProductsDir holds per-product summaries and run documents
	ProductsDir = "products"

	// DocumentExtension is the extension of every catalog document
	DocumentExtension = ".json"
)

// Defaults
const (
	// RunDuration is the width of one run bucket
	RunDuration = time.Hour

	// DefaultReloadSeconds is the reload hint used when a caller passes none
	DefaultReloadSeconds = 60

	// DefaultDisplayFrames is the frame-count hint for the front end
	DefaultDisplayFrames = 60

	// DefaultOutputRoot is used when no output root is configured
	DefaultOutputRoot = "output"

	// DefaultConcurrency bounds the reindex worker pool
	DefaultConcurrency = 4

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)
