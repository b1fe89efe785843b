package dispatch

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"songscribe/internal/config"
)

// Runtime describes a resolved worker invocation environment. The worker
// script is TypeScript, so every shape runs node with ts-node registered.
type Runtime struct {
	// Source names the strategy that produced the runtime, for logging.
	Source string
	// Node is the node binary path or bare command name.
	Node string
	// NVMScript, when set, routes the invocation through bash so nvm can
	// activate the pinned node version first.
	NVMScript string
	// NodeMajor is the version nvm activates in the shell shape.
	NodeMajor int
}

// Command builds the exec.Cmd invoking the worker for one video ID.
func (r Runtime) Command(workDir, script, videoID string, skipExisting bool) *exec.Cmd {
	var cmd *exec.Cmd
	if r.NVMScript != "" {
		parts := []string{
			fmt.Sprintf("source %s", shellQuote(r.NVMScript)),
			fmt.Sprintf("nvm use %d > /dev/null 2>&1", r.NodeMajor),
			strings.Join(workerArgs("node", script, videoID, skipExisting, true), " "),
		}
		cmd = exec.Command("bash", "-c", strings.Join(parts, " && "))
	} else {
		args := workerArgs(r.Node, script, videoID, skipExisting, false)
		cmd = exec.Command(args[0], args[1:]...)
	}
	cmd.Dir = workDir
	return cmd
}

func workerArgs(node, script, videoID string, skipExisting, quoted bool) []string {
	if quoted {
		script = shellQuote(script)
		videoID = shellQuote(videoID)
	}
	args := []string{node, "-r", "ts-node/register", script}
	if skipExisting {
		args = append(args, "--skip-existing")
	}
	return append(args, videoID)
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// Strategy attempts to locate a worker runtime. The second return is false
// when the strategy found nothing and the next one should be tried.
type Strategy func() (Runtime, bool)

// Resolve probes the strategies in order and returns the first hit. When
// every strategy misses it falls back to the bare "node" command with a
// warning; the original behavior is to let an incompatible default node
// fail inside the worker rather than refuse the batch outright.
func Resolve(strategies []Strategy, logger *slog.Logger) Runtime {
	for _, strategy := range strategies {
		if runtime, ok := strategy(); ok {
			logger.Info("resolved worker runtime",
				slog.String("source", runtime.Source),
				slog.String("node", runtime.Node))
			return runtime
		}
	}
	logger.Warn("no pinned node runtime found, falling back to default node")
	return Runtime{Source: "fallback", Node: "node"}
}

// DefaultStrategies returns the probing order used in production: an
// explicit config pin, nvm installs, well-known install paths, then the
// nvm shell wrapper.
func DefaultStrategies(cfg *config.Config) []Strategy {
	home, _ := os.UserHomeDir()
	return []Strategy{
		configuredRuntime(cfg.Worker.Runtime),
		nvmInstall(home, cfg.Worker.NodeMajor),
		knownPaths(cfg.Worker.RuntimePaths, cfg.Worker.NodeMajor),
		nvmShell(home, cfg.Worker.NodeMajor),
	}
}

func configuredRuntime(path string) Strategy {
	return func() (Runtime, bool) {
		if path == "" || !executable(path) {
			return Runtime{}, false
		}
		return Runtime{Source: "config", Node: path}, true
	}
}

// nvmInstall globs the nvm install tree for the pinned major version and
// picks the newest install.
func nvmInstall(home string, major int) Strategy {
	return func() (Runtime, bool) {
		if home == "" {
			return Runtime{}, false
		}
		pattern := filepath.Join(home, ".nvm", "versions", "node", fmt.Sprintf("v%d*", major), "bin", "node")
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			return Runtime{}, false
		}
		// Lexicographic on purpose, not semver: v20.9.0 outranks
		// v20.10.0. Deployments pin their node install around this
		// ordering, so do not change it to a version compare.
		sort.Strings(matches)
		for i := len(matches) - 1; i >= 0; i-- {
			if executable(matches[i]) {
				return Runtime{Source: "nvm", Node: matches[i]}, true
			}
		}
		return Runtime{}, false
	}
}

func knownPaths(extra []string, major int) Strategy {
	return func() (Runtime, bool) {
		name := fmt.Sprintf("node%d", major)
		candidates := append([]string{}, extra...)
		candidates = append(candidates,
			filepath.Join("/usr/local/bin", name),
			filepath.Join("/usr/bin", name),
			filepath.Join("/opt/homebrew/bin", name),
		)
		for _, candidate := range candidates {
			if executable(candidate) {
				return Runtime{Source: "path", Node: candidate}, true
			}
		}
		return Runtime{}, false
	}
}

func nvmShell(home string, major int) Strategy {
	return func() (Runtime, bool) {
		if home == "" {
			return Runtime{}, false
		}
		script := filepath.Join(home, ".nvm", "nvm.sh")
		if _, err := os.Stat(script); err != nil {
			return Runtime{}, false
		}
		return Runtime{Source: "nvm-shell", Node: "node", NVMScript: script, NodeMajor: major}, true
	}
}

func executable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
