package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nijaru/yt-scribe/config"
	"github.com/nijaru/yt-scribe/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"013000", 5400, false},
		{"01:30:00", 5400, false},
		{"30:00", 1800, false},
		{"0:05", 5, false},
		{" 00:01:02 ", 62, false},
		{"01h30m00s", 5400, false},
		{"1:2:3", 3723, false},
		{"12345", 0, true},
		{"1234567", 0, true},
		{"", 0, true},
		{"1:2:3:4", 0, true},
		{"1::3", 0, true},
		{":30", 0, true},
		{"abc", 0, true},
		{"1152921504606846975:59:00", 0, true},
		{"99999999999999999999:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidTimeRange))
				assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    TimeRange
		wantErr error
	}{
		{"valid", "00:10:00", "00:20:00", TimeRange{600, 1200}, nil},
		{"exactly one hour", "000000", "010000", TimeRange{0, 3600}, nil},
		{"end equals start", "00:10:00", "00:10:00", TimeRange{}, errors.ErrInvalidTimeRange},
		{"end before start", "00:20:00", "00:10:00", TimeRange{}, errors.ErrInvalidTimeRange},
		{"too long", "00:00:00", "01:00:01", TimeRange{}, errors.ErrSegmentTooLong},
		{"bad start", "nope", "00:10:00", TimeRange{}, errors.ErrInvalidTimeRange},
		{"wrapping hours", "1152921504606846975:59:00", "00:00:10", TimeRange{}, errors.ErrInvalidTimeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeRange(tt.start, tt.end)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.End-tt.want.Start, got.Duration())
		})
	}
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name    string
		tr      TimeRange
		wantErr error
	}{
		{"valid", TimeRange{Start: 0, End: 10}, nil},
		{"negative start", TimeRange{Start: -60, End: 10}, errors.ErrInvalidTimeRange},
		{"empty", TimeRange{Start: 10, End: 10}, errors.ErrInvalidTimeRange},
		{"over an hour", TimeRange{Start: 0, End: MaxSegmentSeconds + 1}, errors.ErrSegmentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRange("test", tt.tr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:30:00", FormatDuration(5400))
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "00:00:00", FormatDuration(-5))
	assert.Equal(t, "00:01:01", FormatDuration(61))
	assert.Equal(t, "120:00:00", FormatDuration(120*3600))
}

func TestFormatParseRoundTrip(t *testing.T) {
	inputs := []string{"013000", "01:30:00", "30:00", "235959", "00:00:01", "10:00:00", "5:07"}
	for _, in := range inputs {
		secs, err := ParseTimestamp(in)
		require.NoError(t, err)

		formatted := FormatDuration(secs)
		again, err := ParseTimestamp(formatted)
		require.NoError(t, err)
		assert.Equal(t, secs, again, in)
		assert.Equal(t, formatted, FormatDuration(again), in)
	}
}

func TestValidateVideoURL(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube-nocookie.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/attribution_link?a=x&u=/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", ""},
		{"  https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30  ", "dQw4w9WgXcQ"},
		{"not a url", ""},
		{"https://vimeo.com/123456789", ""},
		{"see https://youtu.be/dQw4w9WgXcQ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, err := ValidateVideoURL(tt.url)
			if tt.wantID == "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestAllowedAudioFile(t *testing.T) {
	assert.True(t, AllowedAudioFile("talk.mp3"))
	assert.True(t, AllowedAudioFile("TALK.FLAC"))
	assert.True(t, AllowedAudioFile("a.b.webm"))
	assert.False(t, AllowedAudioFile("talk.ogg"))
	assert.False(t, AllowedAudioFile("mp3"))
	assert.False(t, AllowedAudioFile(""))
	assert.Len(t, AllowedAudioExtensions(), 8)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"talk.mp3":              "talk.mp3",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\clip.wav`:  "clip.wav",
		"my talk (final).m4a":   "my_talk_final.m4a",
		".hidden.mp3":           "hidden.mp3",
		"???":                   "upload",
		"   spaced   name.mp3 ": "spaced_name.mp3",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestValidatorLanguage(t *testing.T) {
	v := NewValidator(&config.Config{AI: config.AIConfig{DefaultLanguage: "it"}})
	assert.Equal(t, "it", v.Language(""))
	assert.Equal(t, "en", v.Language(" en "))
	assert.Equal(t, LanguageAuto, v.Language("auto"))
}

func TestValidateRequest(t *testing.T) {
	v := NewValidator(&config.Config{})

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		opts        RequestValidationOpts
		wantKind    errors.Kind
	}{
		{
			name:        "valid json post",
			method:      http.MethodPost,
			contentType: "application/json; charset=utf-8",
			body:        `{}`,
			opts:        RequestValidationOpts{AllowedMethods: []string{http.MethodPost}, RequireJSON: true},
		},
		{
			name:     "wrong method",
			method:   http.MethodGet,
			opts:     RequestValidationOpts{AllowedMethods: []string{http.MethodPost}},
			wantKind: errors.KindInvalidInput,
		},
		{
			name:        "not json",
			method:      http.MethodPost,
			contentType: "text/plain",
			opts:        RequestValidationOpts{RequireJSON: true},
			wantKind:    errors.KindInvalidInput,
		},
		{
			name:     "too large",
			method:   http.MethodPost,
			body:     strings.Repeat("x", 20),
			opts:     RequestValidationOpts{MaxContentLength: 10},
			wantKind: errors.KindResourceLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			err := v.ValidateRequest(req, tt.opts)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errors.KindOf(err))
		})
	}
}
