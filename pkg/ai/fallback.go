package ai

import (
	"sort"
	"strings"
	"time"
)

func unavailableSentiment() Sentiment {
	return Sentiment{
		Sentiment:   "neutral",
		Confidence:  0.5,
		Keywords:    []string{},
		Summary:     "Unable to analyze sentiment at this time",
		Suggestions: []string{"Consider taking a moment to reflect on your feelings", "Try some deep breathing exercises"},
		AnalyzedAt:  time.Now(),
	}
}

// sentimentFromText is used when the model answered but not with JSON.
func sentimentFromText(raw string) Sentiment {
	lower := strings.ToLower(raw)
	sentiment := "neutral"
	switch {
	case strings.Contains(lower, "positive"):
		sentiment = "positive"
	case strings.Contains(lower, "negative"):
		sentiment = "negative"
	}

	summary := raw
	if len(summary) > 100 {
		summary = summary[:100]
	}
	return Sentiment{
		Sentiment:   sentiment,
		Confidence:  0.6,
		Keywords:    []string{"emotional", "reflection"},
		Summary:     summary + "...",
		Suggestions: []string{"Consider your emotional state", "Take time for self-reflection"},
		AnalyzedAt:  time.Now(),
	}
}

func defaultTips(full bool) WellnessTips {
	if !full {
		return WellnessTips{
			Tips: []string{
				"Take a 5-minute break to breathe deeply",
				"Write down three things you're grateful for",
				"Go for a short walk outside",
			},
			Focus:         "general wellness",
			Encouragement: "You're doing great! Keep taking care of yourself.",
		}
	}
	return WellnessTips{
		Tips: []string{
			"Take a 5-minute break to breathe deeply",
			"Write down three things you're grateful for",
			"Go for a short walk outside",
			"Listen to calming music",
			"Practice mindfulness meditation",
		},
		Focus:         "general wellness",
		Encouragement: "Remember to be kind to yourself. Small steps lead to big changes.",
	}
}

var defaultPrompts = map[string][]PromptIdea{
	"gratitude": {
		{Title: "Three Good Things", Content: "Write about three good things that happened today, no matter how small."},
		{Title: "Grateful Person", Content: "Think of someone you're grateful for and write about why they mean so much to you."},
		{Title: "Simple Pleasures", Content: "What simple pleasures brought you joy today?"},
	},
	"reflection": {
		{Title: "Today's Learning", Content: "What did you learn about yourself today?"},
		{Title: "Growth Moment", Content: "Describe a moment today when you felt you grew or improved."},
		{Title: "Challenges Overcome", Content: "What challenge did you face today and how did you handle it?"},
	},
	"mindfulness": {
		{Title: "Present Moment", Content: "Describe what you're experiencing right now using all your senses."},
		{Title: "Breath Awareness", Content: "Write about your breathing and how it feels in this moment."},
		{Title: "Body Scan", Content: "Notice how your body feels right now and write about any sensations."},
	},
	"general": {
		{Title: "Free Write", Content: "Write whatever comes to mind. Don't worry about structure or grammar."},
		{Title: "Emotional Check-in", Content: "How are you feeling right now? What emotions are present?"},
		{Title: "Day Summary", Content: "Summarize your day in a few sentences. What stood out?"},
	},
}

// DefaultPromptCategories lists the categories that have built-in prompts.
func DefaultPromptCategories() []string {
	out := make([]string, 0, len(defaultPrompts))
	for c := range defaultPrompts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DefaultPrompts returns the built-in prompts for category, or the general set.
func DefaultPrompts(category string) []PromptIdea {
	if p, ok := defaultPrompts[category]; ok {
		return p
	}
	return defaultPrompts["general"]
}
