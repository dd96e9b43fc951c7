// Package constants provides shared constants used throughout the wxdata codebase.
// This includes file permissions, scan limits, persistence defaults, and other
// values that should be consistent across the application.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// ScratchDirPermissions is used for the private extraction area (rwx------)
	ScratchDirPermissions = 0700
)

// Scan constants
const (
	// DefaultWorkers is the number of files processed at once during a scan.
	// A single worker gives the strictly sequential base behavior.
	DefaultWorkers = 1

	// MaxWorkers caps the worker pool regardless of configuration
	MaxWorkers = 64

	// IgnoreFileName is the name of the gitignore-style file honored at the scan root
	IgnoreFileName = ".wxignore"

	// MaxReportedFailures is the number of per-file failures kept in scan statistics
	MaxReportedFailures = 1000
)

// Rescan constants
const (
	// DefaultRescanInterval is the default interval between automatic rescans
	DefaultRescanInterval = 1 * time.Hour

	// RescanContextTimeout bounds a single automatic rescan
	RescanContextTimeout = 30 * time.Minute
)

// Persistence constants
const (
	// SchemaVersion is the version of the persisted catalog layout
	SchemaVersion = 1

	// DefaultCatalogFile is the catalog file name used when none is given
	DefaultCatalogFile = "wxdata.index.yaml"

	// SQLiteBusyTimeout bounds how long a catalog database waits on a lock
	SQLiteBusyTimeout = 5 * time.Second
)

// Path constants
const (
	// DefaultConfigPath is the default path for configuration files
	DefaultConfigPath = "~/.wxdata.yaml"

	// ScratchDirPattern is the os.MkdirTemp pattern for extraction areas
	ScratchDirPattern = "wxdata-scratch-*"
)

// Format constants
const (
	// TimeFormatGranule is the compact timestamp layout used in granule headers and names
	TimeFormatGranule = "20060102150405"

	// TimeFormatGranuleDOY is the year + day-of-year timestamp layout used in granule names
	TimeFormatGranuleDOY = "2006002150405"

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "2006-01-02 15:04:05"
)
