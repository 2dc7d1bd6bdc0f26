package domain

import "errors"

// One sentinel per failure kind. Callers match with errors.Is; the external
// scheduler tells kinds apart through ErrorKind in the exit message.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnreachable = errors.New("rendering service unreachable")
	ErrRenderTimeout      = errors.New("renderer timed out loading the page")
	ErrUpstreamError      = errors.New("rendering service error")
	ErrEmptyResponse      = errors.New("empty render response")
	ErrPriceNotFound      = errors.New("price not found")
	ErrMalformedPrice     = errors.New("malformed price")
	ErrPathUnwritable     = errors.New("history path unwritable")
	ErrInvalidSchema      = errors.New("history header mismatch")
	ErrIOFailure          = errors.New("history write failed")
	ErrConcurrentAccess   = errors.New("history file locked by another writer")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidInput, "InvalidInput"},
	{ErrServiceUnreachable, "ServiceUnreachable"},
	{ErrRenderTimeout, "RenderTimeout"},
	{ErrUpstreamError, "UpstreamError"},
	{ErrEmptyResponse, "EmptyResponse"},
	{ErrPriceNotFound, "PriceNotFound"},
	{ErrMalformedPrice, "MalformedPrice"},
	{ErrPathUnwritable, "PathUnwritable"},
	{ErrInvalidSchema, "InvalidSchema"},
	{ErrIOFailure, "IOFailure"},
	{ErrConcurrentAccess, "ConcurrentAccessError"},
}

// ErrorKind returns the stable name of the failure kind wrapped in err,
// or "Unknown" when err carries none of the sentinels.
func ErrorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}
