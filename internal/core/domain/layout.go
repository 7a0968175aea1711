package domain

import "path/filepath"

const (
	// ProtannoDirName is the name of the internal working directory.
	ProtannoDirName = ".protanno"

	// CacheDirName is the name of the annotation cache directory.
	CacheDirName = "cache"

	// SQLiteFileName is the name of the SQLite cache database.
	SQLiteFileName = "cache.db"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "protanno.yaml"

	// IdentifierColumn is the canonical name of the first output column.
	IdentifierColumn = "identifier"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default path of the annotation cache.
// It joins .protanno and cache.
func DefaultCachePath() string {
	return filepath.Join(ProtannoDirName, CacheDirName)
}

// SQLitePath returns the database path inside the given cache directory.
func SQLitePath(cacheDir string) string {
	return filepath.Join(cacheDir, SQLiteFileName)
}
