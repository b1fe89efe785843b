package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"songscribe/internal/logging"
)

const artifactExt = ".json"

// Tier names the two artifact storage stages.
type Tier string

const (
	TierRaw         Tier = "raw"
	TierTranscribed Tier = "transcribed"
)

// Store answers existence and retrieval questions about the two artifact
// tiers. It holds no state beyond the directory paths; every probe reads
// the filesystem fresh so admission decisions never act on a stale view.
type Store struct {
	rawDir         string
	transcribedDir string
	logger         *slog.Logger
}

// NewStore builds a Store over the two tier directories.
func NewStore(rawDir, transcribedDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		rawDir:         rawDir,
		transcribedDir: transcribedDir,
		logger:         logger.With(logging.String("component", "library")),
	}
}

// RawDir returns the tier-A directory.
func (s *Store) RawDir() string { return s.rawDir }

// TranscribedDir returns the tier-B directory.
func (s *Store) TranscribedDir() string { return s.transcribedDir }

// Classification groups probed video IDs by which tiers already hold an
// artifact for them. IDs absent from all three buckets have no artifacts.
type Classification struct {
	RawOnly         []string `json:"raw_lyrics"`
	TranscribedOnly []string `json:"transcribed_lyrics"`
	Both            []string `json:"both"`
}

// Has reports whether the ID landed in any bucket.
func (c Classification) Has(id string) bool {
	for _, bucket := range [][]string{c.RawOnly, c.TranscribedOnly, c.Both} {
		for _, existing := range bucket {
			if existing == id {
				return true
			}
		}
	}
	return false
}

// Total counts IDs across all buckets.
func (c Classification) Total() int {
	return len(c.RawOnly) + len(c.TranscribedOnly) + len(c.Both)
}

// Classify probes both tiers for each ID. Existence is a filesystem-level
// check only: a zero-byte artifact still counts as present. Missing tier
// directories and unreadable entries degrade to absent so a broken mount
// re-admits work instead of silently skipping it.
func (s *Store) Classify(ids []string) Classification {
	var out Classification
	for _, id := range ids {
		hasRaw := s.exists(s.rawDir, id)
		hasTranscribed := s.exists(s.transcribedDir, id)
		switch {
		case hasRaw && hasTranscribed:
			out.Both = append(out.Both, id)
		case hasRaw:
			out.RawOnly = append(out.RawOnly, id)
		case hasTranscribed:
			out.TranscribedOnly = append(out.TranscribedOnly, id)
		}
	}
	return out
}

func (s *Store) exists(dir, id string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, id+artifactExt))
	if err == nil {
		return true
	}
	if !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("artifact probe failed, treating as absent",
			logging.String("video_id", id),
			logging.String("dir", dir),
			logging.Error(err))
	}
	return false
}

// Song summarizes one stored artifact for listings.
type Song struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title,omitempty"`
	Tier    Tier   `json:"tier"`
}

// List enumerates artifact IDs in the raw tier, sorted. IDs that also have
// a transcribed artifact report the transcribed tier and carry the title
// from its metadata when one is stored.
func (s *Store) List() ([]Song, error) {
	entries, err := os.ReadDir(s.rawDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list raw artifacts: %w", err)
	}

	songs := make([]Song, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		id := strings.TrimSuffix(name, artifactExt)
		song := Song{VideoID: id, Tier: TierRaw}
		if s.exists(s.transcribedDir, id) {
			song.Tier = TierTranscribed
		}
		if artifact, err := s.Load(id); err == nil {
			song.Title = artifact.Title
		}
		songs = append(songs, song)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].VideoID < songs[j].VideoID })
	return songs, nil
}

// Artifact is one stored song document plus where it came from.
type Artifact struct {
	VideoID string
	Tier    Tier
	Path    string
	Title   string
	Data    json.RawMessage
}

// ErrNotFound reports a video ID with no artifact in either tier.
var ErrNotFound = errors.New("song artifact not found")

var titleCaser = cases.Title(language.English)

// Load reads the artifact for a video ID, preferring the transcribed tier
// because it carries metadata the raw tier lacks.
func (s *Store) Load(id string) (*Artifact, error) {
	candidates := []struct {
		tier Tier
		dir  string
	}{
		{TierTranscribed, s.transcribedDir},
		{TierRaw, s.rawDir},
	}
	for _, candidate := range candidates {
		path := filepath.Join(candidate.dir, id+artifactExt)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read artifact %s: %w", path, err)
		}
		return &Artifact{
			VideoID: id,
			Tier:    candidate.tier,
			Path:    path,
			Title:   extractTitle(data),
			Data:    data,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// extractTitle pulls a display title out of the artifact metadata. The
// downloader lowercases slugs in older artifacts, so an all-lowercase
// title gets title-cased for display.
func extractTitle(data []byte) string {
	var doc struct {
		Title    string `json:"title"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = strings.TrimSpace(doc.Metadata.Title)
	}
	if title != "" && title == strings.ToLower(title) {
		title = titleCaser.String(title)
	}
	return title
}
