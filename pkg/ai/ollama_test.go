package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"gemma:2b"}]}`))
		case "/api/generate":
			var req generateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.False(t, req.Stream)
			assert.Equal(t, "gemma:2b", req.Model)
			_ = json.NewEncoder(w).Encode(generateResponse{Response: response})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckHealth(t *testing.T) {
	srv := newTestServer(t, "")
	h := NewClient(srv.URL, "", logger.NewNop()).CheckHealth(context.Background())

	assert.True(t, h.IsRunning)
	assert.Equal(t, []string{"gemma:2b"}, h.Models)
}

func TestCheckHealth_Down(t *testing.T) {
	h := NewClient("http://127.0.0.1:1", "", logger.NewNop()).CheckHealth(context.Background())
	assert.False(t, h.IsRunning)
	assert.NotEmpty(t, h.Error)
}

func TestAnalyzeSentiment_JSON(t *testing.T) {
	srv := newTestServer(t, `{"sentiment":"positive","confidence":1.7,"keywords":["calm"],"summary":"Good day"}`)
	s := NewClient(srv.URL, "", logger.NewNop()).AnalyzeSentiment(context.Background(), "I had a lovely walk")

	assert.Equal(t, "positive", s.Sentiment)
	assert.Equal(t, 1.0, s.Confidence)
	assert.Equal(t, []string{"calm"}, s.Keywords)
	assert.Equal(t, []string{}, s.Suggestions)
	assert.False(t, s.AnalyzedAt.IsZero())
}

func TestAnalyzeSentiment_PlainText(t *testing.T) {
	srv := newTestServer(t, "This entry feels mostly negative overall.")
	s := NewClient(srv.URL, "", logger.NewNop()).AnalyzeSentiment(context.Background(), "ugh")

	assert.Equal(t, "negative", s.Sentiment)
	assert.Equal(t, 0.6, s.Confidence)
}

func TestAnalyzeSentiment_Unreachable(t *testing.T) {
	s := NewClient("http://127.0.0.1:1", "", logger.NewNop()).AnalyzeSentiment(context.Background(), "text")

	assert.Equal(t, "neutral", s.Sentiment)
	assert.Equal(t, "Unable to analyze sentiment at this time", s.Summary)
}

func TestGenerateJournalPrompts_Fallback(t *testing.T) {
	srv := newTestServer(t, "not json")
	set := NewClient(srv.URL, "", logger.NewNop()).GenerateJournalPrompts(context.Background(), "gratitude", "")

	require.Len(t, set.Prompts, 3)
	assert.Equal(t, "Three Good Things", set.Prompts[0].Title)
	assert.Equal(t, "beginner", set.Difficulty)
	assert.Equal(t, 5, set.EstimatedTime)
}

func TestGenerateWellnessTips(t *testing.T) {
	srv := newTestServer(t, `{"tips":["Sleep early"],"focus":"rest"}`)
	tips := NewClient(srv.URL, "", logger.NewNop()).GenerateWellnessTips(context.Background(), nil, nil)

	assert.Equal(t, []string{"Sleep early"}, tips.Tips)
	assert.Equal(t, "rest", tips.Focus)
	assert.NotEmpty(t, tips.Encouragement)
}

func TestBatchAnalyzeSentiment(t *testing.T) {
	srv := newTestServer(t, `{"sentiment":"neutral","confidence":0.5}`)
	out := NewClient(srv.URL, "", logger.NewNop()).BatchAnalyzeSentiment(context.Background(), []EntryText{
		{ID: "a", Content: "one"}, {ID: "b", Content: "two"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[1].EntryID)
}

func TestDefaultPrompts_UnknownCategory(t *testing.T) {
	assert.Equal(t, "Free Write", DefaultPrompts("cooking")[0].Title)
}

func TestDefaultPromptCategories(t *testing.T) {
	assert.Equal(t, []string{"general", "gratitude", "mindfulness", "reflection"}, DefaultPromptCategories())
}
