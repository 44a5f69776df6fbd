package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	stdout []byte
	stderr []byte
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.stdout, f.stderr, f.err
}

func hasPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestYtDlpFetchMetadata(t *testing.T) {
	r := &fakeRunner{stdout: []byte(`{"title":"Sermon","duration":5400.0,"uploader":"Church","view_count":1234,"formats":[]}`)}
	y := NewYtDlp("/usr/bin/yt-dlp", r)

	meta, err := y.FetchMetadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, &VideoMetadata{Title: "Sermon", DurationSeconds: 5400, Uploader: "Church", ViewCount: 1234}, meta)

	require.Len(t, r.calls, 1)
	assert.Equal(t, "/usr/bin/yt-dlp", r.calls[0].name)
	assert.Contains(t, r.calls[0].args, "--dump-json")
	assert.Contains(t, r.calls[0].args, "--skip-download")
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", r.calls[0].args[len(r.calls[0].args)-1])
}

func TestYtDlpFetchMetadataDefaults(t *testing.T) {
	y := NewYtDlp("yt-dlp", &fakeRunner{stdout: []byte(`{}`)})

	meta, err := y.FetchMetadata(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", meta.Title)
	assert.Equal(t, "Unknown", meta.Uploader)
	assert.Zero(t, meta.DurationSeconds)
	assert.Zero(t, meta.ViewCount)
}

func TestYtDlpFetchMetadataErrors(t *testing.T) {
	_, err := NewYtDlp("yt-dlp", &fakeRunner{stdout: []byte("not json")}).FetchMetadata(context.Background(), "u")
	assert.Error(t, err)

	_, err = NewYtDlp("yt-dlp", &fakeRunner{err: assert.AnError}).FetchMetadata(context.Background(), "u")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestYtDlpFetchMedia(t *testing.T) {
	r := &fakeRunner{}
	y := NewYtDlp("yt-dlp", r)

	require.NoError(t, y.FetchMedia(context.Background(), "u", "/tmp/x_temp.%(ext)s"))
	require.Len(t, r.calls, 1)
	args := r.calls[0].args
	assert.True(t, hasPair(args, "-f", "worstaudio/worst"))
	assert.True(t, hasPair(args, "-o", "/tmp/x_temp.%(ext)s"))
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--no-mtime", "server Last-Modified must not age the download")
}

func TestFFmpegArgs(t *testing.T) {
	f := NewFFmpeg("ffmpeg", &fakeRunner{})
	args := f.Args(ClipSpec{Input: "in.webm", Output: "out.mp3", Start: 90, Duration: 600, BitrateKbps: 64})

	assert.True(t, hasPair(args, "-ss", "90"))
	assert.True(t, hasPair(args, "-i", "in.webm"))
	assert.True(t, hasPair(args, "-t", "600"))
	assert.True(t, hasPair(args, "-acodec", "mp3"))
	assert.True(t, hasPair(args, "-ab", "64k"))
	assert.True(t, hasPair(args, "-ac", "1"))
	assert.True(t, hasPair(args, "-ar", "22050"))
	assert.Contains(t, args, "out.mp3")
	assert.Contains(t, args, "-y")

	ssIdx, inIdx := -1, -1
	for i, a := range args {
		switch a {
		case "-ss":
			ssIdx = i
		case "-i":
			inIdx = i
		}
	}
	assert.Less(t, ssIdx, inIdx, "seek must precede the input")
}

func TestFFmpegTranscodeClip(t *testing.T) {
	r := &fakeRunner{err: &CommandError{Op: "test", Name: "ffmpeg", Err: assert.AnError, Stderr: "boom"}}
	f := NewFFmpeg("/opt/ffmpeg", r)

	err := f.TranscodeClip(context.Background(), ClipSpec{Input: "a", Output: "b", Duration: 1, BitrateKbps: 32})
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "boom", cmdErr.Stderr)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "/opt/ffmpeg", r.calls[0].name)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner(testLogger())
	_, _, err := r.Run(context.Background(), "definitely-not-a-real-binary-yt-scribe")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "definitely-not-a-real-binary-yt-scribe", cmdErr.Name)
	assert.Contains(t, err.Error(), "failed")
}
