package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact writes a song artifact into a tier directory, creating the
// directory as needed.
func WriteArtifact(t testing.TB, dir, videoID, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create tier directory %s: %v", dir, err)
	}
	path := filepath.Join(dir, videoID+".json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact %s: %v", path, err)
	}
	return path
}
