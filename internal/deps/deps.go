package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"songscribe/internal/config"
)

// Requirement defines an external dependency Songscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Default returns the requirements for running the transcription worker.
func Default(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "node", Command: "node", Description: "JavaScript runtime for the worker"},
		{Name: "bash", Command: "bash", Description: "shell used by the nvm runtime wrapper", Optional: true},
		{Name: "worker script", Path: cfg.WorkerScript(), Description: "download-and-transcribe worker"},
	}
}

// Check evaluates the provided requirements and reports availability.
// Command requirements resolve through PATH; path requirements stat the
// file directly.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case req.Path != "":
			status.Command = req.Path
			if info, err := os.Stat(req.Path); err != nil {
				status.Detail = fmt.Sprintf("file %q not found", req.Path)
			} else if info.IsDir() {
				status.Detail = fmt.Sprintf("%q is a directory", req.Path)
			} else {
				status.Available = true
			}
		case status.Command == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(status.Command); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", status.Command)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}
