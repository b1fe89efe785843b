package api

import (
	"strconv"
	"time"

	"songscribe/internal/batch"
	"songscribe/internal/library"
)

// ProcessRequest is the batch submission payload.
type ProcessRequest struct {
	URLs []string `json:"urls"`
}

// ExistingGroups mirrors the tier classification buckets on the wire.
type ExistingGroups struct {
	RawLyrics         []string `json:"raw_lyrics"`
	TranscribedLyrics []string `json:"transcribed_lyrics"`
	Both              []string `json:"both"`
}

// DispatchInfo reports one launched worker.
type DispatchInfo struct {
	VideoID   string `json:"video_id"`
	PID       int    `json:"pid"`
	LogOffset int64  `json:"log_offset"`
	StartedAt string `json:"started_at"`
}

// LaunchFailure reports one video ID whose worker failed to start.
type LaunchFailure struct {
	VideoID string `json:"video_id"`
	Error   string `json:"error"`
}

// ProcessResponse is the wire form of a batch outcome.
type ProcessResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	BatchID      string          `json:"batch_id,omitempty"`
	VideoIDs     []string        `json:"video_ids,omitempty"`
	NewVideoIDs  []string        `json:"new_video_ids,omitempty"`
	InvalidURLs  []string        `json:"invalid_urls,omitempty"`
	Existing     *ExistingGroups `json:"existing,omitempty"`
	Dispatches   []DispatchInfo  `json:"dispatches,omitempty"`
	ProcessIDs   []int           `json:"process_ids,omitempty"`
	LaunchErrors []LaunchFailure `json:"launch_errors,omitempty"`
	Skipped      bool            `json:"skipped"`
	LogFile      string          `json:"log_file,omitempty"`
}

// FromOutcome converts a batch outcome into its wire form.
func FromOutcome(outcome *batch.Outcome) ProcessResponse {
	resp := ProcessResponse{
		Success:     true,
		BatchID:     outcome.BatchID,
		VideoIDs:    outcome.VideoIDs,
		NewVideoIDs: outcome.Admitted,
		InvalidURLs: outcome.InvalidURLs,
		Existing: &ExistingGroups{
			RawLyrics:         outcome.Existing.RawOnly,
			TranscribedLyrics: outcome.Existing.TranscribedOnly,
			Both:              outcome.Existing.Both,
		},
		ProcessIDs: outcome.PIDs(),
		Skipped:    outcome.NoOp,
		LogFile:    outcome.LogPath,
	}
	if outcome.NoOp {
		resp.Message = "All videos already exist"
		return resp
	}
	resp.Message = "Processing " + plural(len(outcome.Admitted), "new video") + " in background"
	for _, handle := range outcome.Dispatches {
		resp.Dispatches = append(resp.Dispatches, DispatchInfo{
			VideoID:   handle.VideoID,
			PID:       handle.PID,
			LogOffset: handle.LogOffset,
			StartedAt: handle.StartedAt.Format(time.RFC3339),
		})
	}
	for _, failure := range outcome.Failures {
		resp.LaunchErrors = append(resp.LaunchErrors, LaunchFailure{
			VideoID: failure.VideoID,
			Error:   failure.Err.Error(),
		})
	}
	return resp
}

// SongEntry is the wire form of one stored song.
type SongEntry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title,omitempty"`
	Tier    string `json:"tier"`
}

// SongsResponse lists the stored songs.
type SongsResponse struct {
	Songs []SongEntry `json:"songs"`
}

// FromSongs converts library listings into the wire form.
func FromSongs(songs []library.Song) SongsResponse {
	entries := make([]SongEntry, 0, len(songs))
	for _, song := range songs {
		entries = append(entries, SongEntry{
			VideoID: song.VideoID,
			Title:   song.Title,
			Tier:    string(song.Tier),
		})
	}
	return SongsResponse{Songs: entries}
}

// DependencyStatus reports one external dependency check.
type DependencyStatus struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Optional  bool   `json:"optional"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// StatusResponse reports daemon runtime information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	SongCount    int                `json:"song_count"`
	InFlight     []string           `json:"in_flight,omitempty"`
	LogFile      string             `json:"log_file"`
	LockFilePath string             `json:"lock_file_path"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

func plural(count int, noun string) string {
	if count == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(count) + " " + noun + "s"
}
