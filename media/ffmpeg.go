package media

import (
	"context"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	clipSampleRate = 22050
	clipChannels   = 1
)

// ClipSpec describes one trim and re-encode of a source file.
type ClipSpec struct {
	Input       string
	Output      string
	Start       int
	Duration    int
	BitrateKbps int
}

type Transcoder interface {
	TranscodeClip(ctx context.Context, spec ClipSpec) error
}

// FFmpeg produces mono MP3 clips with the ffmpeg binary.
type FFmpeg struct {
	path   string
	runner CommandRunner
}

func NewFFmpeg(path string, runner CommandRunner) *FFmpeg {
	return &FFmpeg{path: path, runner: runner}
}

// Args returns the ffmpeg command line for spec.
func (f *FFmpeg) Args(spec ClipSpec) []string {
	return ffmpeg.
		Input(spec.Input, ffmpeg.KwArgs{"ss": spec.Start}).
		Output(spec.Output, ffmpeg.KwArgs{
			"t":      spec.Duration,
			"acodec": "mp3",
			"ab":     fmt.Sprintf("%dk", spec.BitrateKbps),
			"ac":     clipChannels,
			"ar":     clipSampleRate,
		}).
		OverWriteOutput().
		GetArgs()
}

func (f *FFmpeg) TranscodeClip(ctx context.Context, spec ClipSpec) error {
	_, _, err := f.runner.Run(ctx, f.path, f.Args(spec)...)
	return err
}
