package dispatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"songscribe/internal/logging"
)

func fakeStrategy(runtime Runtime, ok bool) Strategy {
	return func() (Runtime, bool) { return runtime, ok }
}

func TestResolveFirstHitWins(t *testing.T) {
	got := Resolve([]Strategy{
		fakeStrategy(Runtime{}, false),
		fakeStrategy(Runtime{Source: "nvm", Node: "/opt/node"}, true),
		fakeStrategy(Runtime{Source: "path", Node: "/other"}, true),
	}, logging.NewNop())
	if got.Source != "nvm" || got.Node != "/opt/node" {
		t.Fatalf("unexpected runtime: %+v", got)
	}
}

func TestResolveFallsBackToBareNode(t *testing.T) {
	got := Resolve([]Strategy{fakeStrategy(Runtime{}, false)}, logging.NewNop())
	if got.Source != "fallback" || got.Node != "node" {
		t.Fatalf("unexpected fallback runtime: %+v", got)
	}
}

func TestCommandDirectRuntime(t *testing.T) {
	runtime := Runtime{Source: "config", Node: "/opt/node20/bin/node"}
	cmd := runtime.Command("/work", "/work/scripts/worker.ts", "dQw4w9WgXcQ", true)
	want := []string{"/opt/node20/bin/node", "-r", "ts-node/register", "/work/scripts/worker.ts", "--skip-existing", "dQw4w9WgXcQ"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("args = %v, want %v", cmd.Args, want)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, cmd.Args[i], want[i])
		}
	}
	if cmd.Dir != "/work" {
		t.Fatalf("dir = %q", cmd.Dir)
	}
}

func TestCommandWithoutSkipExisting(t *testing.T) {
	runtime := Runtime{Node: "node"}
	cmd := runtime.Command("/work", "worker.ts", "dQw4w9WgXcQ", false)
	for _, arg := range cmd.Args {
		if arg == "--skip-existing" {
			t.Fatal("unexpected --skip-existing flag")
		}
	}
}

func TestCommandShellRuntime(t *testing.T) {
	runtime := Runtime{Source: "nvm-shell", Node: "node", NVMScript: "/home/u/.nvm/nvm.sh", NodeMajor: 20}
	cmd := runtime.Command("/work", "/work/scripts/my worker.ts", "dQw4w9WgXcQ", true)
	if cmd.Args[0] != "bash" || cmd.Args[1] != "-c" {
		t.Fatalf("expected bash -c invocation, got %v", cmd.Args)
	}
	script := cmd.Args[2]
	for _, fragment := range []string{
		"source '/home/u/.nvm/nvm.sh'",
		"nvm use 20 > /dev/null 2>&1",
		"node -r ts-node/register '/work/scripts/my worker.ts' --skip-existing 'dQw4w9WgXcQ'",
	} {
		if !strings.Contains(script, fragment) {
			t.Fatalf("shell command %q missing %q", script, fragment)
		}
	}
}

func TestShellQuoteEscapesSingleQuotes(t *testing.T) {
	if got, want := shellQuote(`it's`), `'it'"'"'s'`; got != want {
		t.Fatalf("shellQuote = %q, want %q", got, want)
	}
}

func TestConfiguredRuntimeRequiresExecutable(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "node")
	if err := os.WriteFile(node, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if runtime, ok := configuredRuntime(node)(); !ok || runtime.Node != node {
		t.Fatalf("expected configured runtime %s, got %+v ok=%v", node, runtime, ok)
	}

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("data"), 0o644); err != nil {
		t.Fatalf("write plain: %v", err)
	}
	if _, ok := configuredRuntime(plain)(); ok {
		t.Fatal("non-executable file must not resolve")
	}
	if _, ok := configuredRuntime("")(); ok {
		t.Fatal("empty pin must not resolve")
	}
}

func TestNVMInstallPicksNewest(t *testing.T) {
	home := t.TempDir()
	for _, version := range []string{"v20.10.0", "v20.11.1"} {
		bin := filepath.Join(home, ".nvm", "versions", "node", version, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(bin, "node"), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("write node: %v", err)
		}
	}

	runtime, ok := nvmInstall(home, 20)()
	if !ok {
		t.Fatal("expected nvm install to resolve")
	}
	if !strings.Contains(runtime.Node, "v20.11.1") {
		t.Fatalf("expected newest install, got %s", runtime.Node)
	}
}

func TestNVMInstallMissesOtherMajor(t *testing.T) {
	home := t.TempDir()
	bin := filepath.Join(home, ".nvm", "versions", "node", "v18.19.0", "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(bin, "node"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write node: %v", err)
	}
	if _, ok := nvmInstall(home, 20)(); ok {
		t.Fatal("major 20 probe must not match a v18 install")
	}
}

func TestKnownPathsUsesExtraCandidates(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "node20")
	if err := os.WriteFile(node, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	runtime, ok := knownPaths([]string{node}, 20)()
	if !ok || runtime.Node != node {
		t.Fatalf("expected extra candidate to resolve, got %+v ok=%v", runtime, ok)
	}
}

func TestNVMShellRequiresScript(t *testing.T) {
	home := t.TempDir()
	if _, ok := nvmShell(home, 20)(); ok {
		t.Fatal("missing nvm.sh must not resolve")
	}
	if err := os.MkdirAll(filepath.Join(home, ".nvm"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, ".nvm", "nvm.sh"), []byte("#"), 0o644); err != nil {
		t.Fatalf("write nvm.sh: %v", err)
	}
	runtime, ok := nvmShell(home, 20)()
	if !ok || runtime.NVMScript == "" {
		t.Fatalf("expected shell runtime, got %+v ok=%v", runtime, ok)
	}
}
