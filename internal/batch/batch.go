package batch

import (
	"time"

	"songscribe/internal/dispatch"
	"songscribe/internal/library"
)

// Admit subtracts classified IDs from the deduplicated valid-ID list. The
// admitted subset keeps the first-occurrence order of the input.
func Admit(ids []string, existing library.Classification) []string {
	var admitted []string
	for _, id := range ids {
		if existing.Has(id) {
			continue
		}
		admitted = append(admitted, id)
	}
	return admitted
}

// Outcome is the full result of one admission batch. Every video ID lands
// in exactly one of the existing buckets or the admitted list.
type Outcome struct {
	BatchID     string
	StartedAt   time.Time
	VideoIDs    []string
	InvalidURLs []string
	Existing    library.Classification
	Admitted    []string
	Dispatches  []dispatch.Handle
	Failures    []dispatch.Failure
	// NoOp is set when every recognized ID already had artifacts and
	// nothing was dispatched.
	NoOp    bool
	LogPath string
}

// BuildOutcome assembles the report for a batch. Aggregation only, no I/O.
func BuildOutcome(batchID string, ids, invalid []string, existing library.Classification, admitted []string, handles []dispatch.Handle, failures []dispatch.Failure, logPath string) *Outcome {
	return &Outcome{
		BatchID:     batchID,
		StartedAt:   time.Now().UTC(),
		VideoIDs:    ids,
		InvalidURLs: invalid,
		Existing:    existing,
		Admitted:    admitted,
		Dispatches:  handles,
		Failures:    failures,
		NoOp:        len(admitted) == 0,
		LogPath:     logPath,
	}
}

// PIDs lists the process identifiers of every successful dispatch.
func (o *Outcome) PIDs() []int {
	if len(o.Dispatches) == 0 {
		return nil
	}
	pids := make([]int, 0, len(o.Dispatches))
	for _, handle := range o.Dispatches {
		pids = append(pids, handle.PID)
	}
	return pids
}
