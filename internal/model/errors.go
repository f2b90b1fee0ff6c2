package model

import "errors"

// Reason codes for degraded results. These are machine-readable and
// part of the API surface, not log strings.
const (
	ReasonTimeout = "AI_TIMEOUT"
	ReasonParse   = "AI_PARSE"
	ReasonError   = "AI_ERROR"
)

// ErrorKind values for hard failures returned by the synchronous
// endpoint.
const (
	ErrorKindInvalidInput     = "INVALID_INPUT"
	ErrorKindNoProviderOutput = "NO_PROVIDER_OUTPUT"
	ErrorKindInvalidJSON      = "INVALID_JSON_FROM_MODEL"
	ErrorKindInternal         = "INTERNAL"
)

// ErrInvalidInput covers empty or oversized submissions. It is raised
// before any provider is contacted.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoProviderOutput is the only provider-side error allowed to
// surface as a hard failure: every configured provider failed and the
// fallback path produced nothing usable either.
var ErrNoProviderOutput = errors.New("no provider output")
