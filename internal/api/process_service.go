package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"songscribe/internal/batch"
	"songscribe/internal/dispatch"
	"songscribe/internal/identify"
	"songscribe/internal/library"
	"songscribe/internal/logging"
)

var (
	// ErrEmptyBatch reports a submission with no references at all.
	ErrEmptyBatch = errors.New("no URLs provided")
	// ErrNoValidReferences reports a submission where every non-blank
	// reference was malformed. The returned outcome still carries the
	// invalid inputs for the caller.
	ErrNoValidReferences = errors.New("no valid YouTube video IDs found")
)

// WorkerDispatcher is the dispatch surface ProcessService needs.
type WorkerDispatcher interface {
	Dispatch(batchID string, ids []string) ([]dispatch.Handle, []dispatch.Failure, error)
	LogPath() string
}

// ProcessService runs the admission pipeline for one submission: extract
// IDs, probe the tiers, admit the remainder, dispatch workers, and build
// the outcome report.
type ProcessService struct {
	store      *library.Store
	dispatcher WorkerDispatcher
	logger     *slog.Logger
}

// NewProcessService wires the admission pipeline.
func NewProcessService(store *library.Store, dispatcher WorkerDispatcher, logger *slog.Logger) *ProcessService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ProcessService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.With(logging.String("component", "process")),
	}
}

// Process handles one batch submission. The existence probe runs fresh on
// every call so decisions reflect the current filesystem state, never a
// cached snapshot.
func (s *ProcessService) Process(ctx context.Context, refs []string) (*batch.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, ErrEmptyBatch
	}

	ids, invalid := identify.Batch(refs)
	if len(ids) == 0 {
		outcome := batch.BuildOutcome("", nil, invalid, library.Classification{}, nil, nil, nil, s.dispatcher.LogPath())
		return outcome, ErrNoValidReferences
	}

	batchID := uuid.NewString()
	logger := s.logger.With(logging.String("batch_id", batchID))
	logger.Info("batch received",
		logging.Int("recognized", len(ids)),
		logging.Int("invalid", len(invalid)))

	existing := s.store.Classify(ids)
	admitted := batch.Admit(ids, existing)
	if existing.Total() > 0 {
		logger.Info("skipping existing videos",
			logging.Int("raw_only", len(existing.RawOnly)),
			logging.Int("transcribed_only", len(existing.TranscribedOnly)),
			logging.Int("both", len(existing.Both)))
	}

	if len(admitted) == 0 {
		logger.Info("all videos already exist, nothing to dispatch")
		return batch.BuildOutcome(batchID, ids, invalid, existing, nil, nil, nil, s.dispatcher.LogPath()), nil
	}

	handles, failures, err := s.dispatcher.Dispatch(batchID, admitted)
	if err != nil {
		return nil, err
	}
	logger.Info("batch dispatched",
		logging.Int("admitted", len(admitted)),
		logging.Int("started", len(handles)),
		logging.Int("failed", len(failures)))

	return batch.BuildOutcome(batchID, ids, invalid, existing, admitted, handles, failures, s.dispatcher.LogPath()), nil
}
