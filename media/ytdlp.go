package media

import (
	"context"
	"encoding/json"
	"fmt"
)

// Downloader fetches video metadata and media from a hosting site.
type Downloader interface {
	FetchMetadata(ctx context.Context, url string) (*VideoMetadata, error)
	FetchMedia(ctx context.Context, url, outputTemplate string) error
}

type VideoMetadata struct {
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	Uploader        string `json:"uploader"`
	ViewCount       int64  `json:"view_count"`
}

// YtDlp drives the yt-dlp command line tool.
type YtDlp struct {
	path   string
	runner CommandRunner
}

func NewYtDlp(path string, runner CommandRunner) *YtDlp {
	return &YtDlp{path: path, runner: runner}
}

func (y *YtDlp) FetchMetadata(ctx context.Context, url string) (*VideoMetadata, error) {
	stdout, _, err := y.runner.Run(ctx, y.path,
		"--dump-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		url,
	)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Title     *string  `json:"title"`
		Duration  *float64 `json:"duration"`
		Uploader  *string  `json:"uploader"`
		ViewCount *int64   `json:"view_count"`
	}
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	meta := &VideoMetadata{Title: "Unknown", Uploader: "Unknown"}
	if raw.Title != nil {
		meta.Title = *raw.Title
	}
	if raw.Duration != nil {
		meta.DurationSeconds = int(*raw.Duration)
	}
	if raw.Uploader != nil {
		meta.Uploader = *raw.Uploader
	}
	if raw.ViewCount != nil {
		meta.ViewCount = *raw.ViewCount
	}
	return meta, nil
}

// FetchMedia downloads the lowest quality audio stream. outputTemplate uses
// yt-dlp's %(ext)s placeholder for the container extension. The file keeps
// its local write time so PurgeStale never sees a fresh download as old.
func (y *YtDlp) FetchMedia(ctx context.Context, url, outputTemplate string) error {
	_, _, err := y.runner.Run(ctx, y.path,
		"-f", "worstaudio/worst",
		"-o", outputTemplate,
		"--no-mtime",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		url,
	)
	return err
}
