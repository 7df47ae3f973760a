package ai

import "errors"

// ErrUpstream indicates the completion endpoint failed: timeout,
// non-success status, or an empty body. Non-fatal; the orchestrator
// routes to the deterministic fallback.
var ErrUpstream = errors.New("ai upstream error")

// ErrParse indicates the model output could not be decoded into the
// required structure. Same fallback route as ErrUpstream.
var ErrParse = errors.New("ai response parse error")

// ErrRateLimited indicates the tenant exhausted its call budget.
var ErrRateLimited = errors.New("ai rate limit reached")

// ParseFailure carries the raw and extracted model text alongside a parse
// error so degraded runs can be diagnosed from the error log.
type ParseFailure struct {
	Raw       string
	Extracted string
	Reason    string
}

func (e *ParseFailure) Error() string {
	return "ai response parse error: " + e.Reason
}

func (e *ParseFailure) Unwrap() error { return ErrParse }
