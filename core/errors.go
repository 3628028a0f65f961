package core

import "errors"

// Error kinds for a conversation turn. Fatal kinds abort the turn and
// are returned to the caller wrapped with context; non-fatal kinds
// (ErrEmbedding) are absorbed and logged where they occur. The raw kind
// is never shown to the end user, only mapped to a status.
var (
	// ErrUnauthorized means no identity could be resolved for the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimitExceeded means the identity used up its request window.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrRateLimiterUnavailable means the limiter's backing store failed.
	// Admission fails closed; callers can distinguish "try again later"
	// (ErrRateLimitExceeded) from "service degraded" (this).
	ErrRateLimiterUnavailable = errors.New("rate limiter unavailable")

	// ErrCoachNotFound means the user has no coach profile.
	ErrCoachNotFound = errors.New("coach not found")

	// ErrStoreUnavailable means the chronological log store failed.
	// Fatal for the turn: the log is the source of truth and no partial
	// response is produced without it.
	ErrStoreUnavailable = errors.New("log store unavailable")

	// ErrEmbedding means an embedding call failed. Non-fatal: semantic
	// search is best-effort enrichment over the authoritative log.
	ErrEmbedding = errors.New("embedding failed")

	// ErrToolLoopExceeded means the model kept requesting tools past the
	// configured round cap.
	ErrToolLoopExceeded = errors.New("tool loop exceeded")

	// ErrUpstreamModel means the model invocation failed after the
	// client's own retries were exhausted.
	ErrUpstreamModel = errors.New("upstream model error")
)
