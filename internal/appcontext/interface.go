// Package appcontext provides the application context interface shared by
// all commands, so command packages depend on one small interface instead of
// the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/hdwx/mrms"
)

// Interface defines what commands need from the application. The App struct
// from cmd/mrmscat/app implements it; tests use Mock.
type Interface interface {
	// Client returns the catalog client, creating it lazily if needed.
	Client() (mrms.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// StatusFile returns the configured end-of-batch status document path,
	// relative to the output root. Empty disables it.
	StatusFile() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
