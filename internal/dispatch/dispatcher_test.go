package dispatch

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"songscribe/internal/config"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Worker.Dir = base
	cfg.Worker.ScriptPath = "scripts/worker.ts"

	d := New(&cfg, nil)
	d.WithStrategies(fakeStrategy(Runtime{Source: "test", Node: "/opt/node"}, true))
	return d
}

type fakeLauncher struct {
	cmds []*exec.Cmd
	errs map[string]error
	done chan struct{}
}

func (f *fakeLauncher) launch(cmd *exec.Cmd) (int, <-chan struct{}, error) {
	f.cmds = append(f.cmds, cmd)
	id := cmd.Args[len(cmd.Args)-1]
	if err, ok := f.errs[id]; ok && err != nil {
		return 0, nil, err
	}
	done := f.done
	if done == nil {
		closed := make(chan struct{})
		close(closed)
		done = closed
	}
	return 10000 + len(f.cmds), done, nil
}

func TestDispatchLaunchesEachAdmittedID(t *testing.T) {
	d := newTestDispatcher(t)
	launcher := &fakeLauncher{}
	d.WithLauncher(launcher.launch)

	handles, failures, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ", "9bZkp7q19f0"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(handles))
	}
	if handles[0].VideoID != "dQw4w9WgXcQ" || handles[1].VideoID != "9bZkp7q19f0" {
		t.Fatalf("handles out of order: %+v", handles)
	}
	if handles[0].PID == 0 || handles[1].PID == 0 {
		t.Fatalf("expected recorded PIDs, got %+v", handles)
	}
	if len(launcher.cmds) != 2 {
		t.Fatalf("expected 2 launches, got %d", len(launcher.cmds))
	}

	data, err := os.ReadFile(d.LogPath())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	log := string(data)
	for _, fragment := range []string{
		"Starting batch batch-1: 2 video(s): dQw4w9WgXcQ, 9bZkp7q19f0",
		"[Starting] Video ID: dQw4w9WgXcQ",
		"[Starting] Video ID: 9bZkp7q19f0",
		"Command: /opt/node -r ts-node/register",
		"--skip-existing",
	} {
		if !strings.Contains(log, fragment) {
			t.Fatalf("log missing %q:\n%s", fragment, log)
		}
	}
}

func TestDispatchLogAppendsAcrossBatches(t *testing.T) {
	d := newTestDispatcher(t)
	d.WithLauncher((&fakeLauncher{}).launch)

	if _, _, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ"}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if _, _, err := d.Dispatch("batch-2", []string{"9bZkp7q19f0"}); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}

	data, err := os.ReadFile(d.LogPath())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	log := string(data)
	if !strings.Contains(log, "batch-1") || !strings.Contains(log, "batch-2") {
		t.Fatalf("expected both batch headers in log:\n%s", log)
	}
}

func TestDispatchIsolatesLaunchFailures(t *testing.T) {
	d := newTestDispatcher(t)
	launcher := &fakeLauncher{errs: map[string]error{"9bZkp7q19f0": errors.New("fork failed")}}
	d.WithLauncher(launcher.launch)

	handles, failures, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "kXYiU_JCYtU"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %+v", handles)
	}
	if len(failures) != 1 || failures[0].VideoID != "9bZkp7q19f0" {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if !errors.Is(failures[0].Err, ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", failures[0].Err)
	}
}

func TestDispatchFirstLaunchMissingRuntimeIsBatchFatal(t *testing.T) {
	d := newTestDispatcher(t)
	launcher := &fakeLauncher{errs: map[string]error{"dQw4w9WgXcQ": exec.ErrNotFound}}
	d.WithLauncher(launcher.launch)

	handles, failures, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ", "9bZkp7q19f0"})
	if !errors.Is(err, ErrRuntimeResolution) {
		t.Fatalf("expected ErrRuntimeResolution, got %v", err)
	}
	if handles != nil || failures != nil {
		t.Fatalf("expected no partial results, got handles=%v failures=%v", handles, failures)
	}
	if len(launcher.cmds) != 1 {
		t.Fatalf("expected no further launch attempts, got %d", len(launcher.cmds))
	}
}

func TestDispatchLaterMissingRuntimeIsIsolated(t *testing.T) {
	d := newTestDispatcher(t)
	launcher := &fakeLauncher{errs: map[string]error{"9bZkp7q19f0": exec.ErrNotFound}}
	d.WithLauncher(launcher.launch)

	handles, failures, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ", "9bZkp7q19f0"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(handles) != 1 || len(failures) != 1 {
		t.Fatalf("expected 1 handle and 1 failure, got %v / %v", handles, failures)
	}
}

func TestDispatchFirstLaunchGenericFailureNotBatchFatal(t *testing.T) {
	d := newTestDispatcher(t)
	launcher := &fakeLauncher{errs: map[string]error{"dQw4w9WgXcQ": errors.New("permission denied")}}
	d.WithLauncher(launcher.launch)

	handles, failures, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ", "9bZkp7q19f0"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(handles) != 1 || len(failures) != 1 {
		t.Fatalf("expected 1 handle and 1 failure, got %v / %v", handles, failures)
	}
}

func TestDispatchGuardsInFlightIDs(t *testing.T) {
	d := newTestDispatcher(t)
	running := make(chan struct{})
	d.WithLauncher((&fakeLauncher{done: running}).launch)

	if _, _, err := d.Dispatch("batch-1", []string{"dQw4w9WgXcQ"}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	_, failures, err := d.Dispatch("batch-2", []string{"dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(failures) != 1 || !errors.Is(failures[0].Err, ErrInFlight) {
		t.Fatalf("expected in-flight failure, got %+v", failures)
	}

	close(running)
	deadline := time.Now().Add(2 * time.Second)
	for len(d.InFlight()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("in-flight set never drained")
		}
		time.Sleep(5 * time.Millisecond)
	}

	handles, failures, err := d.Dispatch("batch-3", []string{"dQw4w9WgXcQ"})
	if err != nil || len(failures) != 0 || len(handles) != 1 {
		t.Fatalf("expected clean redispatch, got handles=%v failures=%v err=%v", handles, failures, err)
	}
}

func TestDispatchEmptyBatchTouchesNothing(t *testing.T) {
	d := newTestDispatcher(t)
	d.WithLauncher((&fakeLauncher{}).launch)

	handles, failures, err := d.Dispatch("batch-1", nil)
	if err != nil || handles != nil || failures != nil {
		t.Fatalf("expected no-op, got %v / %v / %v", handles, failures, err)
	}
	if _, err := os.Stat(d.LogPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no log file, stat err = %v", err)
	}
}
