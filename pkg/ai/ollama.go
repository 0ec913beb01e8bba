// Package ai talks to a local Ollama server. Every exported call degrades to a
// canned answer when the model is unreachable or replies with unparseable text,
// so callers never have to handle AI failures.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/pkg/logger"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "gemma:2b"
)

// Client is an Ollama HTTP client.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	log     *logger.Logger
}

func NewClient(baseURL, model string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Sentiment is the structured result of analysing one journal entry.
type Sentiment struct {
	Sentiment   string    `json:"sentiment" bson:"sentiment"`
	Confidence  float64   `json:"confidence" bson:"confidence"`
	Keywords    []string  `json:"keywords" bson:"keywords"`
	Summary     string    `json:"summary" bson:"summary"`
	Suggestions []string  `json:"suggestions" bson:"suggestions"`
	AnalyzedAt  time.Time `json:"analyzedAt" bson:"analyzedAt"`
}

// WellnessTips are personalised suggestions derived from mood stats.
type WellnessTips struct {
	Tips          []string `json:"tips"`
	Focus         string   `json:"focus"`
	Encouragement string   `json:"encouragement"`
}

// PromptIdea is a generated journaling prompt.
type PromptIdea struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PromptSet is the result of a prompt generation request.
type PromptSet struct {
	Prompts       []PromptIdea `json:"prompts"`
	Difficulty    string       `json:"difficulty"`
	EstimatedTime int          `json:"estimatedTime"`
}

// Health reports whether the Ollama server answers and which models it has.
type Health struct {
	IsRunning bool     `json:"isRunning"`
	Models    []string `json:"models,omitempty"`
	Error     string   `json:"error,omitempty"`
	Model     string   `json:"model"`
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Format  string                 `json:"format,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// CheckHealth calls GET /api/tags with a short timeout.
func (c *Client) CheckHealth(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return Health{Error: err.Error(), Model: c.model}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Health{Error: err.Error(), Model: c.model}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Health{Error: fmt.Sprintf("ollama returned %d", resp.StatusCode), Model: c.model}
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Health{Error: err.Error(), Model: c.model}
	}
	h := Health{IsRunning: true, Model: c.model}
	for _, m := range body.Models {
		h.Models = append(h.Models, m.Name)
	}
	return h
}

// Generate posts a non-streaming completion request and returns the raw text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Format:  "json",
		Options: map[string]interface{}{"temperature": 0.7, "top_p": 0.9, "num_predict": 500},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}

// AnalyzeSentiment classifies a journal entry.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) Sentiment {
	prompt := fmt.Sprintf(`Analyze the emotional sentiment of the following journal entry. Respond with a JSON object containing:
- sentiment: "positive", "negative", or "neutral"
- confidence: a number between 0 and 1
- keywords: an array of 3-5 key emotional words
- summary: a brief 1-2 sentence summary
- suggestions: an array of 2-3 helpful suggestions for mental wellness

Journal entry: %q

Respond only with valid JSON:`, text)

	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		c.log.Warn("sentiment analysis failed", "error", err)
		return unavailableSentiment()
	}

	var s Sentiment
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return sentimentFromText(raw)
	}
	if s.Sentiment == "" {
		s.Sentiment = "neutral"
	}
	if s.Confidence == 0 {
		s.Confidence = 0.5
	}
	s.Confidence = clamp(s.Confidence, 0, 1)
	if s.Summary == "" {
		s.Summary = "No summary available"
	}
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	if s.Suggestions == nil {
		s.Suggestions = []string{}
	}
	s.AnalyzedAt = time.Now()
	return s
}

// GenerateWellnessTips turns recent mood data into tips.
func (c *Client) GenerateWellnessTips(ctx context.Context, moodData interface{}, preferences interface{}) WellnessTips {
	moodJSON, _ := json.Marshal(moodData)
	prefJSON, _ := json.Marshal(preferences)
	prompt := fmt.Sprintf(`Based on the following mood data, generate personalized wellness tips. Respond with a JSON object containing:
- tips: an array of 3-5 specific, actionable wellness tips
- focus: the main area to focus on (e.g., "stress management", "positive thinking", "self-care")
- encouragement: a motivational message

Mood data: %s
User preferences: %s

Respond only with valid JSON:`, moodJSON, prefJSON)

	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		c.log.Warn("wellness tips generation failed", "error", err)
		return defaultTips(true)
	}

	var tips WellnessTips
	if err := json.Unmarshal([]byte(raw), &tips); err != nil {
		return defaultTips(false)
	}
	if len(tips.Tips) == 0 {
		tips.Tips = []string{"Take a 5-minute break", "Practice gratitude", "Get some fresh air"}
	}
	if tips.Focus == "" {
		tips.Focus = "general wellness"
	}
	if tips.Encouragement == "" {
		tips.Encouragement = "You're doing great! Keep taking care of yourself."
	}
	return tips
}

// GenerateJournalPrompts asks for three prompts in a category.
func (c *Client) GenerateJournalPrompts(ctx context.Context, category, mood string) PromptSet {
	if category == "" {
		category = "general"
	}
	if mood == "" {
		mood = "neutral"
	}
	prompt := fmt.Sprintf(`Generate 3 creative journal prompts for %s category, considering the user's current mood: %s.
Respond with a JSON object containing:
- prompts: an array of 3 prompt objects, each with "title" and "content"
- difficulty: "beginner", "intermediate", or "advanced"
- estimatedTime: time in minutes

Respond only with valid JSON:`, category, mood)

	fallback := PromptSet{Prompts: DefaultPrompts(category), Difficulty: "beginner", EstimatedTime: 5}

	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		c.log.Warn("prompt generation failed", "error", err)
		return fallback
	}
	var set PromptSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return fallback
	}
	if len(set.Prompts) == 0 {
		set.Prompts = fallback.Prompts
	}
	if set.Difficulty == "" {
		set.Difficulty = fallback.Difficulty
	}
	if set.EstimatedTime == 0 {
		set.EstimatedTime = fallback.EstimatedTime
	}
	return set
}

// EntryText is anything with an id and text to analyse.
type EntryText struct {
	ID      string
	Content string
}

// EntryAnalysis pairs an entry id with its sentiment.
type EntryAnalysis struct {
	EntryID  string    `json:"entryId"`
	Analysis Sentiment `json:"analysis"`
}

// BatchAnalyzeSentiment analyses entries one by one, stopping early if ctx is done.
func (c *Client) BatchAnalyzeSentiment(ctx context.Context, entries []EntryText) []EntryAnalysis {
	out := make([]EntryAnalysis, 0, len(entries))
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		out = append(out, EntryAnalysis{EntryID: e.ID, Analysis: c.AnalyzeSentiment(ctx, e.Content)})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
