package validation

import (
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nijaru/yt-scribe/config"
	"github.com/nijaru/yt-scribe/errors"
)

const (
	// MaxSegmentSeconds is the longest clip that may be requested.
	MaxSegmentSeconds = 3600
	// MaxAudioBytes is the provider's hard limit for a single audio file.
	MaxAudioBytes = 25 * 1024 * 1024
	// LanguageAuto lets the transcription provider detect the language.
	LanguageAuto = "auto"
)

var (
	timeCharsRe   = regexp.MustCompile(`[^\d:]`)
	videoURLRe    = regexp.MustCompile(`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|.+\?v=)?([^&=%\?]{11})`)
	unsafeNameRe  = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	audioExts     = []string{"wav", "mp3", "m4a", "mp4", "mpeg", "mpga", "webm", "flac"}
	allowedAudios = func() map[string]struct{} {
		m := make(map[string]struct{}, len(audioExts))
		for _, ext := range audioExts {
			m[ext] = struct{}{}
		}
		return m
	}()
)

// TimeRange is a validated clip window in whole seconds.
type TimeRange struct {
	Start int `json:"start_seconds"`
	End   int `json:"end_seconds"`
}

func (tr TimeRange) Duration() int {
	return tr.End - tr.Start
}

// ParseTimestamp converts "HHMMSS", "H:M:S" or "M:S" into seconds. Characters
// other than digits and colons are ignored.
func ParseTimestamp(s string) (int, error) {
	const op = "validation.ParseTimestamp"

	cleaned := timeCharsRe.ReplaceAllString(s, "")
	invalid := func() (int, error) {
		return 0, errors.InvalidInput(op, errors.ErrInvalidTimeRange,
			fmt.Sprintf("Invalid time %q, use HHMMSS or HH:MM:SS", s))
	}

	var parts []string
	switch {
	case len(cleaned) == 6 && !strings.Contains(cleaned, ":"):
		parts = []string{cleaned[0:2], cleaned[2:4], cleaned[4:6]}
	case strings.Contains(cleaned, ":"):
		parts = strings.Split(cleaned, ":")
		if len(parts) == 2 {
			parts = append([]string{"0"}, parts...)
		}
		if len(parts) != 3 {
			return invalid()
		}
	default:
		return invalid()
	}

	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if parts[i] == "" {
			return invalid()
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil || n > (math.MaxInt-total)/unit {
			return invalid()
		}
		total += n * unit
	}
	return total, nil
}

// ParseTimeRange parses both endpoints and checks the window is positive and
// no longer than MaxSegmentSeconds.
func ParseTimeRange(start, end string) (TimeRange, error) {
	const op = "validation.ParseTimeRange"

	startSec, err := ParseTimestamp(start)
	if err != nil {
		return TimeRange{}, err
	}
	endSec, err := ParseTimestamp(end)
	if err != nil {
		return TimeRange{}, err
	}

	tr := TimeRange{Start: startSec, End: endSec}
	if err := CheckRange(op, tr); err != nil {
		return TimeRange{}, err
	}
	return tr, nil
}

// CheckRange reports whether tr is a usable clip window.
func CheckRange(op string, tr TimeRange) error {
	if tr.Start < 0 || tr.End <= tr.Start {
		return errors.InvalidInput(op, errors.ErrInvalidTimeRange, "End time must be after start time")
	}
	if tr.Duration() > MaxSegmentSeconds {
		return errors.InvalidInput(op, errors.ErrSegmentTooLong, "Segment too long (max 1 hour)")
	}
	return nil
}

// ValidateVideoURL returns the 11 character video id found in rawURL.
func ValidateVideoURL(rawURL string) (string, error) {
	const op = "validation.ValidateVideoURL"

	m := videoURLRe.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", errors.InvalidInput(op, errors.ErrInvalidURL, "Invalid YouTube URL")
	}
	return m[6], nil
}

// FormatDuration renders seconds as HH:MM:SS. Hours are not capped.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func AllowedAudioFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := allowedAudios[strings.ToLower(name[idx+1:])]
	return ok
}

func AllowedAudioExtensions() []string {
	return append([]string(nil), audioExts...)
}

// SanitizeFilename reduces an uploaded name to a safe base name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "_")
	name = unsafeNameRe.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

type Validator struct {
	defaultLanguage string
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{defaultLanguage: cfg.AI.DefaultLanguage}
}

// Language returns the requested language hint or the configured default.
func (v *Validator) Language(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return v.defaultLanguage
	}
	return lang
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.ResourceLimit(op, errors.ErrFileTooLarge, "Request body too large")
	}

	return nil
}
