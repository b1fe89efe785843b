package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"songscribe/internal/api"
	"songscribe/internal/config"
	"songscribe/internal/deps"
	"songscribe/internal/dispatch"
	"songscribe/internal/library"
	"songscribe/internal/logging"
)

// Daemon ties the artifact store, the worker dispatcher, and the HTTP API
// into one lifecycle, with flock-based locking to prevent a second
// instance racing admissions against the same tiers.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *library.Store
	dispatcher *dispatch.Dispatcher
	processor  *api.ProcessService

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	server  *apiServer
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *library.Store, dispatcher *dispatch.Dispatcher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || dispatcher == nil {
		return nil, errors.New("daemon requires config, store, and dispatcher")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "songscribed.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		dispatcher: dispatcher,
		processor:  api.NewProcessService(store, dispatcher, logger),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another songscribed instance holds %s", d.lockPath)
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		d.unlock()
		return err
	}

	server, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.unlock()
		return err
	}
	if server != nil {
		if err := server.start(ctx); err != nil {
			d.unlock()
			return err
		}
	}
	d.server = server
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("raw_dir", d.cfg.Paths.RawDir),
		logging.String("transcribed_dir", d.cfg.Paths.TranscribedDir),
		logging.String("process_log", d.cfg.ProcessLogPath()))
	return nil
}

// Stop shuts down the API server and releases the lock. Dispatched
// workers keep running; the daemon never owned them.
func (d *Daemon) Stop() {
	if !d.running.Swap(false) {
		return
	}
	if d.server != nil {
		d.server.stop()
		d.server = nil
	}
	d.unlock()
	d.logger.Info("daemon stopped")
}

// Close releases daemon resources.
func (d *Daemon) Close() {
	d.Stop()
}

func (d *Daemon) unlock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release lock", logging.Error(err))
	}
}

// Status reports daemon runtime information.
func (d *Daemon) Status() api.StatusResponse {
	songCount := 0
	if songs, err := d.store.List(); err == nil {
		songCount = len(songs)
	}

	statuses := deps.Check(deps.Default(d.cfg))
	reported := make([]api.DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		reported = append(reported, api.DependencyStatus{
			Name:      status.Name,
			Command:   status.Command,
			Optional:  status.Optional,
			Available: status.Available,
			Detail:    status.Detail,
		})
	}

	return api.StatusResponse{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		SongCount:    songCount,
		InFlight:     d.dispatcher.InFlight(),
		LogFile:      d.cfg.ProcessLogPath(),
		LockFilePath: d.lockPath,
		Dependencies: reported,
	}
}
