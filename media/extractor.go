package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/yt-scribe/errors"
	"github.com/nijaru/yt-scribe/validation"
	"github.com/sirupsen/logrus"
)

const (
	// targetClipBytes leaves headroom under validation.MaxAudioBytes.
	targetClipBytes = 23 * 1024 * 1024
	minBitrateKbps  = 32
	maxBitrateKbps  = 128
	maxStderrChars  = 1000
)

// AudioClip is a transcoded segment ready for transcription. The caller owns
// the file at Path and must remove it.
type AudioClip struct {
	Path            string `json:"path"`
	SizeBytes       int64  `json:"size_bytes"`
	DurationSeconds int    `json:"duration_seconds"`
	BitrateKbps     int    `json:"bitrate_kbps"`
	Start           int    `json:"start"`
	End             int    `json:"end"`
}

// Bitrate returns the MP3 bitrate in kbps that keeps a clip of the given
// duration near targetClipBytes.
func Bitrate(durationSeconds int) int {
	if durationSeconds <= 0 {
		return maxBitrateKbps
	}
	b := targetClipBytes * 8 / (durationSeconds * 1000)
	if b < minBitrateKbps {
		return minBitrateKbps
	}
	if b > maxBitrateKbps {
		return maxBitrateKbps
	}
	return b
}

type Extractor struct {
	downloader Downloader
	transcoder Transcoder
	dir        string
	logger     *logrus.Logger
	newID      func() string
}

func NewExtractor(downloader Downloader, transcoder Transcoder, dir string, logger *logrus.Logger) *Extractor {
	return &Extractor{
		downloader: downloader,
		transcoder: transcoder,
		dir:        dir,
		logger:     logger,
		newID:      func() string { return uuid.New().String() },
	}
}

// FetchVideoMetadata returns nil when metadata cannot be obtained for any reason.
func (e *Extractor) FetchVideoMetadata(ctx context.Context, url string) *VideoMetadata {
	meta, err := e.downloader.FetchMetadata(ctx, url)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"operation": "Extractor.FetchVideoMetadata",
			"url":       url,
		}).WithError(err).Warn("Video metadata unavailable")
		return nil
	}
	return meta
}

// ExtractSegment downloads url and cuts tr out of it as a mono MP3 that fits
// within validation.MaxAudioBytes. The language hint is only logged.
func (e *Extractor) ExtractSegment(ctx context.Context, url string, tr validation.TimeRange, language string) (*AudioClip, error) {
	const op = "Extractor.ExtractSegment"

	if err := validation.CheckRange(op, tr); err != nil {
		return nil, err
	}

	duration := tr.Duration()
	bitrate := Bitrate(duration)
	id := e.newID()
	rawPrefix := id + "_temp"

	log := e.logger.WithFields(logrus.Fields{
		"operation": op,
		"clip_id":   id,
		"start":     tr.Start,
		"duration":  duration,
		"bitrate":   bitrate,
		"language":  language,
	})
	log.Info("Extracting segment")

	template := filepath.Join(e.dir, rawPrefix+".%(ext)s")
	if err := e.downloader.FetchMedia(ctx, url, template); err != nil {
		e.removePrefixed(rawPrefix)
		return nil, errors.ExternalTool(op, errors.Wrap(errors.ErrDownloadFailed, err.Error()), "Failed to download video")
	}

	raw, err := e.findPrefixed(rawPrefix)
	if err != nil {
		return nil, errors.ExternalTool(op, errors.Wrap(errors.ErrDownloadFailed, err.Error()), "Failed to download video")
	}

	out := filepath.Join(e.dir, id+"_final.mp3")
	err = e.transcoder.TranscodeClip(ctx, ClipSpec{
		Input:       raw,
		Output:      out,
		Start:       tr.Start,
		Duration:    duration,
		BitrateKbps: bitrate,
	})
	if rmErr := os.Remove(raw); rmErr != nil && !os.IsNotExist(rmErr) {
		log.WithError(rmErr).Warn("Failed to remove downloaded file")
	}
	if err != nil {
		os.Remove(out)
		return nil, errors.ExternalTool(op, errors.Wrap(errors.ErrTranscodeFailed, err.Error()),
			"Audio conversion failed: "+stderrTail(err))
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, errors.ExternalTool(op, errors.Wrap(errors.ErrTranscodeFailed, err.Error()), "Failed to create audio file")
	}
	if info.Size() > validation.MaxAudioBytes {
		os.Remove(out)
		return nil, errors.ResourceLimit(op, errors.ErrSegmentStillTooLarge,
			"Resulting file too large, shorten the segment")
	}

	log.WithField("size", info.Size()).Info("Segment extracted")

	return &AudioClip{
		Path:            out,
		SizeBytes:       info.Size(),
		DurationSeconds: duration,
		BitrateKbps:     bitrate,
		Start:           tr.Start,
		End:             tr.End,
	}, nil
}

// PurgeStale removes files in the download directory older than maxAge.
func (e *Extractor) PurgeStale(maxAge time.Duration) int {
	n := PurgeStale(e.dir, maxAge, time.Now())
	if n > 0 {
		e.logger.WithFields(logrus.Fields{
			"operation": "Extractor.PurgeStale",
			"dir":       e.dir,
			"removed":   n,
		}).Info("Purged stale downloads")
	}
	return n
}

func (e *Extractor) findPrefixed(prefix string) (string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(e.dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no file with prefix %s in %s", prefix, e.dir)
}

func (e *Extractor) removePrefixed(prefix string) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			os.Remove(filepath.Join(e.dir, entry.Name()))
		}
	}
}

func stderrTail(err error) string {
	msg := err.Error()
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		msg = cmdErr.Stderr
	}
	if len(msg) > maxStderrChars {
		msg = "..." + msg[len(msg)-maxStderrChars:]
	}
	return msg
}
