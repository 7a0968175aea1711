package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownField is returned when a requested field or group name is not in the catalog.
	ErrUnknownField = zerr.New("unknown annotation field")

	// ErrInternalField is returned when a caller requests a field that is only used as a source input.
	ErrInternalField = zerr.New("field is internal and cannot be requested")

	// ErrNoIdentifiers is returned when a run is started without any identifiers.
	ErrNoIdentifiers = zerr.New("no identifiers specified")

	// ErrInvalidDelimiter is returned when the configured table delimiter is not a single character.
	ErrInvalidDelimiter = zerr.New("delimiter must be a single character")

	// ErrInvalidWorkers is returned when the worker pool size is not positive.
	ErrInvalidWorkers = zerr.New("workers must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = zerr.New("timeout must be positive")

	// ErrUnknownCacheBackend is returned when the cache backend is neither "file" nor "sqlite".
	ErrUnknownCacheBackend = zerr.New("unknown cache backend, expected 'file' or 'sqlite'")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrEnvParseFailed is returned when environment overrides cannot be parsed.
	ErrEnvParseFailed = zerr.New("failed to parse environment overrides")

	// ErrTableReadFailed is returned when the annotation CSV cannot be read.
	ErrTableReadFailed = zerr.New("failed to read annotation table")

	// ErrTableHeaderInvalid is returned when the annotation CSV header is empty or malformed.
	ErrTableHeaderInvalid = zerr.New("malformed annotation table header")

	// ErrTableWriteFailed is returned when the output table cannot be written.
	ErrTableWriteFailed = zerr.New("failed to write output table")

	// ErrIdentifierReadFailed is returned when the identifier list cannot be read.
	ErrIdentifierReadFailed = zerr.New("failed to read identifiers")

	// ErrStoreOpenFailed is returned when the cache store cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open cache store")

	// ErrStoreCreateFailed is returned when the cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache directory")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreUnmarshalFailed is returned when a cache entry cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal cache entry")

	// ErrStoreMarshalFailed is returned when a cache entry cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrStoreInvalidateFailed is returned when a cache entry cannot be removed.
	ErrStoreInvalidateFailed = zerr.New("failed to invalidate cache entry")

	// ErrEntryKeyMismatch is returned when a stored entry carries a different key than requested.
	ErrEntryKeyMismatch = zerr.New("cache entry key mismatch")

	// ErrEntryPartialField is returned when a stored field is missing for some identifiers.
	ErrEntryPartialField = zerr.New("cache entry has a partially populated field")

	// ErrSourceRequestFailed is returned when a request to an annotation source fails.
	ErrSourceRequestFailed = zerr.New("annotation source request failed")

	// ErrSourceRateLimited is returned when an annotation source answers with HTTP 429.
	ErrSourceRateLimited = zerr.New("annotation source rate limit exceeded")

	// ErrSourceParseFailed is returned when a source response cannot be decoded.
	ErrSourceParseFailed = zerr.New("failed to parse annotation source response")

	// ErrSourceOutage is returned when every chunk sent to a source failed.
	ErrSourceOutage = zerr.New("annotation source unavailable")

	// ErrRetriesExhausted is returned when a request keeps failing after the last attempt.
	ErrRetriesExhausted = zerr.New("retries exhausted")

	// ErrUnresolvedIdentifier is returned for an identifier a source could not resolve.
	ErrUnresolvedIdentifier = zerr.New("identifier could not be resolved")

	// ErrMissingInput is returned when a source lacks the dependency value it needs for an identifier.
	ErrMissingInput = zerr.New("missing source input")

	// ErrIllegalTransition is returned when the run state machine is asked to make an invalid move.
	ErrIllegalTransition = zerr.New("illegal run state transition")

	// ErrOutputCreateFailed is returned when the output file cannot be created.
	ErrOutputCreateFailed = zerr.New("failed to create output file")

	// ErrCacheCleanFailed is returned when the cache directory cannot be removed.
	ErrCacheCleanFailed = zerr.New("failed to remove cache directory")

	// ErrMetricsWriteFailed is returned when the metrics file cannot be written.
	ErrMetricsWriteFailed = zerr.New("failed to write metrics file")

	// ErrCacheRepairFailed is returned when the cache is still corrupted after one repair attempt.
	ErrCacheRepairFailed = zerr.New("cache entry corrupted after repair attempt")
)
