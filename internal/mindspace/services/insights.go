package services

import (
	"fmt"
	"math"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultMood        = 3.0
	defaultConfidence  = 0.8
	writingWindowDays  = 30
	minWritingEntries  = 5
	MaxSentimentSample = 10
)

// MoodAverage weights each mood's score by its entry count.
// With no entries the neutral score 3 is returned.
func MoodAverage(stats []models.MoodStat) (float64, int) {
	total, sum := 0, 0.0
	for _, s := range stats {
		total += s.Count
		v, ok := models.MoodValue[s.Mood]
		if !ok {
			v = defaultMood
		}
		sum += v * float64(s.Count)
	}
	if total == 0 {
		return defaultMood, 0
	}
	return sum / float64(total), total
}

// MoodStatus buckets a mood average for the dashboard summary.
func MoodStatus(avg float64) string {
	switch {
	case avg >= 4:
		return "positive"
	case avg >= 3:
		return "stable"
	default:
		return "needs-attention"
	}
}

func newInsight(userID primitive.ObjectID, kind string, period models.InsightPeriod, now time.Time) *models.Insight {
	return &models.Insight{
		User:        userID,
		Type:        kind,
		Period:      period,
		Priority:    "medium",
		Category:    "neutral",
		ActionItems: []string{},
		GeneratedBy: "ai",
		Confidence:  defaultConfidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MoodTrendInsight summarizes mood over a window. It returns nil when there
// were no entries.
func MoodTrendInsight(userID primitive.ObjectID, period string, start, end time.Time, stats []models.MoodStat) *models.Insight {
	avg, total := MoodAverage(stats)
	if total == 0 {
		return nil
	}

	in := newInsight(userID, models.InsightMoodTrend, models.InsightPeriod{StartDate: start, EndDate: end, Type: period}, end)
	switch {
	case avg >= 4:
		in.Title = "Positive Mood Trend"
		in.Description = fmt.Sprintf("Your mood has been consistently positive over the past %s. Keep up the great work!", periodNoun(period))
		in.Category = "positive"
	case avg >= 3:
		in.Title = "Stable Mood Pattern"
		in.Description = fmt.Sprintf("Your mood has been relatively stable over the past %s. Consider adding more positive activities to your routine.", periodNoun(period))
		in.Category = "neutral"
	default:
		in.Title = "Mood Support Needed"
		in.Description = "Your mood has been lower than usual. Consider reaching out for support or trying some wellness activities."
		in.Category = "concern"
		in.Priority = "high"
		in.Actionable = true
		in.ActionItems = []string{"Try a breathing exercise", "Reach out to someone you trust"}
	}
	in.Data = map[string]interface{}{
		"moodStats":    stats,
		"averageMood":  avg,
		"totalEntries": total,
	}
	return in
}

// WritingPatternInsight scores how many of the last 30 days had an entry.
// It returns nil with fewer than five entries in the window.
func WritingPatternInsight(userID primitive.ObjectID, entries []models.Journal, now time.Time) *models.Insight {
	if len(entries) < minWritingEntries {
		return nil
	}

	days := make(map[string]struct{}, len(entries))
	totalWords := 0
	for _, e := range entries {
		days[e.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
		totalWords += e.WordCount
	}
	consistency := float64(len(days)) / writingWindowDays * 100
	pct := int(math.Round(consistency))

	start := now.AddDate(0, 0, -writingWindowDays)
	in := newInsight(userID, models.InsightWritingPattern, models.InsightPeriod{StartDate: start, EndDate: now, Type: "monthly"}, now)
	switch {
	case consistency >= 70:
		in.Title = "Excellent Writing Consistency"
		in.Description = fmt.Sprintf("You've been writing consistently %d%% of the time over the past month. This is a great habit!", pct)
		in.Category = "achievement"
	case consistency >= 40:
		in.Title = "Good Writing Progress"
		in.Description = fmt.Sprintf("You've been writing %d%% of the time. Try to increase your consistency for better mental wellness benefits.", pct)
		in.Category = "positive"
	default:
		in.Title = "Building Writing Habits"
		in.Description = fmt.Sprintf("You've been writing %d%% of the time. Consider setting a daily reminder to help build this healthy habit.", pct)
		in.Category = "neutral"
		in.Actionable = true
		in.ActionItems = []string{"Set a daily writing reminder"}
	}
	in.Data = map[string]interface{}{
		"totalEntries":     len(entries),
		"writingDays":      len(days),
		"consistency":      consistency,
		"averageWordCount": int(math.Round(float64(totalWords) / float64(len(entries)))),
		"totalWords":       totalWords,
	}
	return in
}

// SentimentInsight folds per-entry AI analyses into one insight. It returns
// nil when nothing was analyzed.
func SentimentInsight(userID primitive.ObjectID, period string, start, end time.Time, analyses []ai.EntryAnalysis) *models.Insight {
	if len(analyses) == 0 {
		return nil
	}

	var pos, neg, neu int
	perEntry := make([]map[string]interface{}, 0, len(analyses))
	for _, a := range analyses {
		switch a.Analysis.Sentiment {
		case "positive":
			pos++
		case "negative":
			neg++
		default:
			neu++
		}
		perEntry = append(perEntry, map[string]interface{}{
			"entryId":    a.EntryID,
			"sentiment":  a.Analysis.Sentiment,
			"confidence": a.Analysis.Confidence,
		})
	}
	total := len(analyses)

	overall := "neutral"
	if pos > neg {
		overall = "positive"
	} else if neg > pos {
		overall = "negative"
	}
	confidence := float64(max(pos, neg, neu)) / float64(total)

	in := newInsight(userID, models.InsightSentimentAnalysis, models.InsightPeriod{StartDate: start, EndDate: end, Type: period}, end)
	in.Confidence = confidence
	switch overall {
	case "positive":
		in.Title = "Positive Sentiment Trend"
		in.Description = fmt.Sprintf("Your recent entries show a positive emotional pattern. You've been expressing positive sentiments in %d%% of your recent entries.", int(math.Round(float64(pos)/float64(total)*100)))
		in.Category = "positive"
	case "negative":
		in.Title = "Supportive Sentiment Analysis"
		in.Description = "Your recent entries show some challenging emotions. Consider reaching out for support or trying some wellness activities."
		in.Category = "concern"
		in.Priority = "high"
	default:
		in.Title = "Balanced Emotional State"
		in.Description = "Your recent entries show a balanced emotional state with mixed sentiments. This is normal and healthy."
	}
	in.Data = map[string]interface{}{
		"overallSentiment": overall,
		"confidence":       confidence,
		"breakdown": map[string]int{
			"positive": pos, "negative": neg, "neutral": neu, "total": total,
		},
		"analyses": perEntry,
	}
	return in
}

func periodNoun(period string) string {
	switch period {
	case "daily":
		return "day"
	case "weekly":
		return "week"
	case "yearly":
		return "year"
	default:
		return "month"
	}
}
