package dispatch

import "errors"

var (
	// ErrRuntimeResolution marks the batch-fatal case: the very first
	// launch failed because no worker runtime exists, so no later launch
	// in the batch can succeed either.
	ErrRuntimeResolution = errors.New("worker runtime resolution failed")
	// ErrLaunch marks an isolated per-ID launch failure.
	ErrLaunch = errors.New("worker launch failed")
	// ErrInFlight reports a video ID whose worker from an overlapping
	// batch has not finished yet.
	ErrInFlight = errors.New("dispatch already in flight")
)
