package domain

import "errors"

// ErrorKind classifies failures by how the run should react to them.
type ErrorKind uint8

const (
	// KindNetwork is a transport failure or a 5xx answer. Retryable.
	KindNetwork ErrorKind = iota + 1
	// KindRateLimit is an HTTP 429 answer. Retryable with backoff.
	KindRateLimit
	// KindIdentifierResolution is a per-identifier failure. The identifier gets empty values.
	KindIdentifierResolution
	// KindCacheCorruption is an unreadable or inconsistent cache entry.
	KindCacheCorruption
	// KindConfiguration is a fatal input or settings problem.
	KindConfiguration
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindRateLimit:
		return "RateLimitError"
	case KindIdentifierResolution:
		return "IdentifierResolutionError"
	case KindCacheCorruption:
		return "CacheCorruptionError"
	case KindConfiguration:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// Error attaches an ErrorKind to an underlying error.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Classify wraps err with the given kind. A nil err stays nil.
func Classify(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the kind name so chain formatting shows the classification.
func (e *Error) Message() string {
	return e.Kind.String()
}

// KindOf reports the outermost kind found in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsRetryable reports whether err is a network or rate-limit failure.
func IsRetryable(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindNetwork || k == KindRateLimit)
}
