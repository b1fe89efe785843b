package dispatch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"songscribe/internal/config"
	"songscribe/internal/logging"
)

// Handle is a non-owning reference to a launched worker process. The
// dispatcher never waits on or signals the process through it; the PID is
// reported back to the caller purely for observation.
type Handle struct {
	VideoID string `json:"video_id"`
	PID     int    `json:"pid"`
	// LogOffset is the shared log's length when the worker started, so a
	// reader can scan its output from there. Best effort: 0 when the
	// offset could not be read.
	LogOffset int64     `json:"log_offset"`
	StartedAt time.Time `json:"started_at"`
}

// Failure records one isolated launch error. It degrades a single batch
// entry without aborting the rest.
type Failure struct {
	VideoID string `json:"video_id"`
	Err     error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.VideoID, f.Err)
}

type launchFunc func(cmd *exec.Cmd) (pid int, done <-chan struct{}, err error)

// Dispatcher launches one detached worker per admitted video ID, appending
// all worker output to the shared process log.
type Dispatcher struct {
	workDir      string
	script       string
	logPath      string
	skipExisting bool
	strategies   []Strategy
	launch       launchFunc
	logger       *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New builds a Dispatcher from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		workDir:      cfg.Worker.Dir,
		script:       cfg.WorkerScript(),
		logPath:      cfg.ProcessLogPath(),
		skipExisting: cfg.Worker.SkipExisting,
		strategies:   DefaultStrategies(cfg),
		launch:       startProcess,
		logger:       logger.With(logging.String("component", "dispatcher")),
		inflight:     make(map[string]struct{}),
	}
}

// WithStrategies replaces the runtime probing order (for testing).
func (d *Dispatcher) WithStrategies(strategies ...Strategy) {
	d.strategies = strategies
}

// WithLauncher replaces the process launcher (for testing).
func (d *Dispatcher) WithLauncher(launch launchFunc) {
	d.launch = launch
}

// LogPath returns the shared worker log file.
func (d *Dispatcher) LogPath() string {
	return d.logPath
}

// Dispatch resolves the worker runtime once, then launches one detached
// worker per video ID in order. Launch failures degrade single entries;
// the only batch-fatal path is the first launch failing because the
// resolved runtime does not exist, since every later launch would fail the
// same way.
func (d *Dispatcher) Dispatch(batchID string, ids []string) ([]Handle, []Failure, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	runtime := Resolve(d.strategies, d.logger)

	if err := os.MkdirAll(filepath.Dir(d.logPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure log directory: %w", err)
	}
	// Append mode only. The file is shared by every worker the system has
	// ever launched; truncating or seeking would corrupt the audit trail.
	logFile, err := os.OpenFile(d.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open process log: %w", err)
	}
	defer logFile.Close()

	env := d.workerEnv()
	writeBatchHeader(logFile, batchID, ids)

	var (
		handles  []Handle
		failures []Failure
		attempts int
	)
	for _, id := range ids {
		if !d.acquire(id) {
			d.logger.Warn("skipping launch, already in flight", logging.String("video_id", id))
			failures = append(failures, Failure{VideoID: id, Err: ErrInFlight})
			continue
		}

		cmd := runtime.Command(d.workDir, d.script, id, d.skipExisting)
		cmd.Env = env
		cmd.Stdout = logFile
		cmd.Stderr = logFile

		offset, err := logFile.Seek(0, io.SeekEnd)
		if err != nil {
			// The offset is reporting-only; a launch still proceeds.
			d.logger.Warn("process log offset unavailable",
				logging.String("video_id", id),
				logging.Error(err))
			offset = 0
		}
		fmt.Fprintf(logFile, "\n[Starting] Video ID: %s\n", id)
		fmt.Fprintf(logFile, "Command: %s\n", strings.Join(cmd.Args, " "))

		attempts++
		pid, done, err := d.launch(cmd)
		if err != nil {
			d.release(id)
			if attempts == 1 && runtimeMissing(err) {
				return nil, nil, fmt.Errorf("%w: %s (%s): %v", ErrRuntimeResolution, runtime.Node, runtime.Source, err)
			}
			d.logger.Error("worker launch failed",
				logging.String("video_id", id),
				logging.Error(err))
			failures = append(failures, Failure{VideoID: id, Err: fmt.Errorf("%w: %v", ErrLaunch, err)})
			continue
		}

		go d.await(id, done)

		handle := Handle{VideoID: id, PID: pid, LogOffset: offset, StartedAt: time.Now().UTC()}
		handles = append(handles, handle)
		d.logger.Info("worker started",
			logging.String("video_id", id),
			logging.Int("pid", pid),
			logging.String("log", d.logPath))
	}

	return handles, failures, nil
}

// InFlight reports the video IDs with a running worker launched by this
// process.
func (d *Dispatcher) InFlight() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.inflight))
	for id := range d.inflight {
		ids = append(ids, id)
	}
	return ids
}

func (d *Dispatcher) acquire(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, held := d.inflight[id]; held {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Dispatcher) release(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, id)
}

func (d *Dispatcher) await(id string, done <-chan struct{}) {
	if done != nil {
		<-done
	}
	d.release(id)
}

// workerEnv extends the daemon environment with the worker directory's
// node_modules so ts-node resolves packages without a global install.
func (d *Dispatcher) workerEnv() []string {
	env := os.Environ()
	nodeModules := filepath.Join(d.workDir, "node_modules")
	if info, err := os.Stat(nodeModules); err != nil || !info.IsDir() {
		return env
	}
	for i, entry := range env {
		if value, ok := strings.CutPrefix(entry, "NODE_PATH="); ok {
			env[i] = "NODE_PATH=" + nodeModules + string(os.PathListSeparator) + value
			return env
		}
	}
	return append(env, "NODE_PATH="+nodeModules)
}

func writeBatchHeader(w io.Writer, batchID string, ids []string) {
	separator := strings.Repeat("=", 80)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n%s\n", separator)
	fmt.Fprintf(w, "[%s] Starting batch %s: %d video(s): %s\n", timestamp, batchID, len(ids), strings.Join(ids, ", "))
	fmt.Fprintf(w, "%s\n", separator)
}

// startProcess launches the worker without waiting for it. A reaper
// goroutine collects the exit status so finished workers do not linger as
// zombies; nothing observes the status itself.
func startProcess(cmd *exec.Cmd) (int, <-chan struct{}, error) {
	if err := cmd.Start(); err != nil {
		return 0, nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cmd.Wait()
	}()
	return cmd.Process.Pid, done, nil
}

func runtimeMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
