package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"songscribe/internal/api"
)

func TestProcessCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/process" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req api.ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(api.ProcessResponse{
			Success:     true,
			Message:     "Processing 1 new video in background",
			NewVideoIDs: []string{"dQw4w9WgXcQ"},
			Dispatches: []api.DispatchInfo{
				{VideoID: "dQw4w9WgXcQ", PID: 4242, StartedAt: "2026-01-02T15:04:05Z"},
			},
			ProcessIDs: []int{4242},
			LogFile:    "/tmp/process.log",
		})
	}))
	defer server.Close()

	out, _, err := runCLI(t, []string{"process", "https://youtu.be/dQw4w9WgXcQ"}, server.URL, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "Processing 1 new video in background")
	requireContains(t, out, "dQw4w9WgXcQ")
	requireContains(t, out, "4242")
	requireContains(t, out, "/tmp/process.log")
}

func TestProcessCommandReportsRejections(t *testing.T) {
	env := setupCLITestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(api.ProcessResponse{
			Error:       "no valid YouTube video IDs found",
			InvalidURLs: []string{"nope"},
		})
	}))
	defer server.Close()

	out, _, err := runCLI(t, []string{"process", "nope"}, server.URL, env.configPath)
	if err == nil {
		t.Fatal("expected error for rejected batch")
	}
	requireContains(t, out, "nope")
}

func TestProcessCommandJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProcessResponse{Success: true, Skipped: true, Message: "All videos already exist"})
	}))
	defer server.Close()

	out, _, err := runCLI(t, []string{"process", "--json", "dQw4w9WgXcQ"}, server.URL, env.configPath)
	if err != nil {
		t.Fatalf("process --json: %v", err)
	}
	var resp api.ProcessResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !resp.Skipped {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestProcessCommandRequiresArgs(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"process"}, "", env.configPath); err == nil {
		t.Fatal("expected error without arguments")
	}
}
