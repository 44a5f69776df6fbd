package content

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/nijaru/yt-scribe/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	requests []openai.ChatCompletionRequest
	replies  []string
	err      error
	empty    bool
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if f.empty {
		return openai.ChatCompletionResponse{}, nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}}},
	}, nil
}

type fakeImages struct {
	requests []openai.ImageRequest
	resp     openai.ImageResponse
	err      error
}

func (f *fakeImages) CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func TestGeneratePostRequest(t *testing.T) {
	chat := &fakeChat{replies: []string{"🔥 A short post\n\n#faith"}}
	g := NewPostGenerator(chat, "gpt-4.5-preview", testLogger())

	post, err := g.GeneratePost(context.Background(), "the transcript", "hope")
	require.NoError(t, err)
	assert.Equal(t, "🔥 A short post\n\n#faith", post)

	require.Len(t, chat.requests, 1)
	req := chat.requests[0]
	assert.Equal(t, "gpt-4.5-preview", req.Model)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.InDelta(t, 0.8, req.Temperature, 1e-6)
	assert.InDelta(t, 0.2, req.PresencePenalty, 1e-6)
	assert.InDelta(t, 0.2, req.FrequencyPenalty, 1e-6)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "400 words")
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "the transcript")
	assert.Contains(t, req.Messages[1].Content, "Topic/Context: hope")
}

func TestGeneratePostWithoutTopic(t *testing.T) {
	chat := &fakeChat{replies: []string{"post"}}
	g := NewPostGenerator(chat, "m", testLogger())

	_, err := g.GeneratePost(context.Background(), "the transcript", "  ")
	require.NoError(t, err)
	assert.NotContains(t, chat.requests[0].Messages[1].Content, "Topic/Context")
}

func TestGeneratePostTruncation(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		truncated bool
	}{
		{"under limit", words(300), false},
		{"at limit", words(450), false},
		{"over limit", words(451), true},
		{"far over limit", words(2000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewPostGenerator(&fakeChat{replies: []string{tt.reply}}, "m", testLogger())
			post, err := g.GeneratePost(context.Background(), "text", "")
			require.NoError(t, err)

			if !tt.truncated {
				assert.Equal(t, tt.reply, post)
				return
			}
			assert.True(t, strings.HasSuffix(post, "\n\n"+truncationNotice))
			body := strings.TrimSuffix(post, "\n\n"+truncationNotice)
			assert.Len(t, strings.Fields(body), 400)
		})
	}
}

func TestGeneratePostErrors(t *testing.T) {
	g := NewPostGenerator(&fakeChat{replies: []string{"x"}}, "m", testLogger())
	_, err := g.GeneratePost(context.Background(), "   ", "")
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))

	g = NewPostGenerator(&fakeChat{empty: true}, "m", testLogger())
	_, err = g.GeneratePost(context.Background(), "text", "")
	assert.Equal(t, errors.KindUnexpectedShape, errors.KindOf(err))
	assert.True(t, errors.Is(err, errors.ErrUnexpectedResponse))

	g = NewPostGenerator(&fakeChat{err: &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"}}, "m", testLogger())
	_, err = g.GeneratePost(context.Background(), "text", "")
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindRemote, appErr.Kind)
	assert.Equal(t, "Post generation failed: Rate limit reached", appErr.Message)
}

func TestTruncateWords(t *testing.T) {
	out, truncated := TruncateWords("a  b\n\nc", 5, 2)
	assert.False(t, truncated)
	assert.Equal(t, "a  b\n\nc", out)

	out, truncated = TruncateWords("a  b\n\nc d e f", 5, 2)
	assert.True(t, truncated)
	assert.Equal(t, "a b", out)
}

func TestAppendVideoLink(t *testing.T) {
	tests := []struct {
		name  string
		post  string
		url   string
		start int
		want  string
	}{
		{
			name:  "short link",
			post:  "post",
			url:   "https://youtu.be/dQw4w9WgXcQ",
			start: 90,
			want:  "post\n\n" + videoLinkPrefix + " https://youtu.be/dQw4w9WgXcQ?t=90",
		},
		{
			name:  "existing query",
			post:  "post\n",
			url:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			start: 0,
			want:  "post\n\n" + videoLinkPrefix + " https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AppendVideoLink(tt.post, tt.url, tt.start))
		})
	}
}

func TestGenerateImage(t *testing.T) {
	chat := &fakeChat{replies: []string{"  A farmer sowing seed at dawn, oil painting  \n"}}
	images := &fakeImages{resp: openai.ImageResponse{Data: []openai.ImageResponseDataInner{{B64JSON: "aGVsbG8="}}}}
	g := NewImageGenerator(chat, images, "gpt-4.5-preview", "gpt-image-1", testLogger())

	img, err := g.GenerateImage(context.Background(), "the post")
	require.NoError(t, err)
	assert.Equal(t, &GeneratedImage{ImageB64: "aGVsbG8=", Prompt: "A farmer sowing seed at dawn, oil painting"}, img)

	require.Len(t, chat.requests, 1)
	assert.Equal(t, imageSystemPrompt, chat.requests[0].Messages[0].Content)
	assert.Contains(t, chat.requests[0].Messages[0].Content, "no text")
	assert.Contains(t, chat.requests[0].Messages[0].Content, "Catholic iconography")
	assert.Equal(t, "the post", chat.requests[0].Messages[1].Content)

	require.Len(t, images.requests, 1)
	req := images.requests[0]
	assert.Equal(t, "A farmer sowing seed at dawn, oil painting", req.Prompt)
	assert.Equal(t, "gpt-image-1", req.Model)
	assert.Equal(t, 1, req.N)
	assert.Equal(t, "1024x1536", req.Size)
	assert.Equal(t, "high", req.Quality)
	assert.Equal(t, "auto", req.Background)
	assert.Equal(t, "png", req.OutputFormat)
	assert.Equal(t, 100, req.OutputCompression)
	assert.Equal(t, "auto", req.Moderation)
}

func TestGenerateImageErrors(t *testing.T) {
	t.Run("missing payload", func(t *testing.T) {
		g := NewImageGenerator(&fakeChat{replies: []string{"prompt"}},
			&fakeImages{resp: openai.ImageResponse{Data: []openai.ImageResponseDataInner{{URL: "https://img"}}}},
			"m", "gpt-image-1", testLogger())
		_, err := g.GenerateImage(context.Background(), "post")
		assert.Equal(t, errors.KindUnexpectedShape, errors.KindOf(err))
	})

	t.Run("empty data", func(t *testing.T) {
		g := NewImageGenerator(&fakeChat{replies: []string{"prompt"}}, &fakeImages{}, "m", "gpt-image-1", testLogger())
		_, err := g.GenerateImage(context.Background(), "post")
		assert.True(t, errors.Is(err, errors.ErrUnexpectedResponse))
	})

	t.Run("prompt call fails", func(t *testing.T) {
		images := &fakeImages{}
		g := NewImageGenerator(&fakeChat{err: assert.AnError}, images, "m", "gpt-image-1", testLogger())
		_, err := g.GenerateImage(context.Background(), "post")
		assert.Equal(t, errors.KindRemote, errors.KindOf(err))
		assert.Empty(t, images.requests)
	})

	t.Run("image call fails", func(t *testing.T) {
		g := NewImageGenerator(&fakeChat{replies: []string{"prompt"}},
			&fakeImages{err: &openai.APIError{HTTPStatusCode: 400, Message: "Your request was rejected by the safety system"}},
			"m", "gpt-image-1", testLogger())
		_, err := g.GenerateImage(context.Background(), "post")
		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, errors.KindRemote, appErr.Kind)
		assert.Contains(t, appErr.Message, "safety system")
	})

	t.Run("empty post", func(t *testing.T) {
		g := NewImageGenerator(&fakeChat{replies: []string{"prompt"}}, &fakeImages{}, "m", "gpt-image-1", testLogger())
		_, err := g.GenerateImage(context.Background(), "")
		assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
	})
}
