package models

import (
	"math"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/pkg/ai"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moods accepted on a journal entry.
var Moods = []string{
	"very-happy", "happy", "neutral", "sad", "very-sad", "anxious",
	"stressed", "calm", "excited", "grateful", "frustrated", "peaceful",
}

// MoodEmoji maps each mood to the emoji shown next to an entry.
var MoodEmoji = map[string]string{
	"very-happy": "😄",
	"happy":      "😊",
	"neutral":    "😐",
	"sad":        "😢",
	"very-sad":   "😭",
	"anxious":    "😰",
	"stressed":   "😫",
	"calm":       "😌",
	"excited":    "🤩",
	"grateful":   "🙏",
	"frustrated": "😤",
	"peaceful":   "🕊️",
}

// MoodValue scores a mood from 1 (lowest) to 5 for averaging.
var MoodValue = map[string]float64{
	"very-sad": 1, "sad": 2, "neutral": 3, "happy": 4, "very-happy": 5,
	"anxious": 2, "stressed": 2, "calm": 4, "excited": 4, "grateful": 5,
	"frustrated": 2, "peaceful": 4,
}

const wordsPerMinute = 200

// Journal is a single entry in the journals collection.
type Journal struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	User          primitive.ObjectID  `json:"user" bson:"user"`
	Title         string              `json:"title,omitempty" bson:"title,omitempty"`
	Content       string              `json:"content" bson:"content"`
	Mood          string              `json:"mood" bson:"mood"`
	MoodIntensity int                 `json:"moodIntensity" bson:"moodIntensity"`
	Tags          []string            `json:"tags" bson:"tags"`
	IsPrivate     bool                `json:"isPrivate" bson:"isPrivate"`
	Prompt        *primitive.ObjectID `json:"prompt,omitempty" bson:"prompt,omitempty"`
	AIAnalysis    *ai.Sentiment       `json:"aiAnalysis,omitempty" bson:"aiAnalysis,omitempty"`
	IsFavorite    bool                `json:"isFavorite" bson:"isFavorite"`
	WordCount     int                 `json:"wordCount" bson:"wordCount"`
	ReadingTime   int                 `json:"readingTime" bson:"readingTime"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ComputeMetrics refreshes WordCount and ReadingTime from Content.
func (j *Journal) ComputeMetrics() {
	j.WordCount = len(strings.Fields(j.Content))
	j.ReadingTime = int(math.Ceil(float64(j.WordCount) / wordsPerMinute))
}

func (j *Journal) MoodEmoji() string {
	if e, ok := MoodEmoji[j.Mood]; ok {
		return e
	}
	return "😐"
}

// JournalView is the response shape of an entry, with its prompt summary.
type JournalView struct {
	Journal
	MoodEmoji     string         `json:"moodEmoji"`
	PromptSummary *PromptSummary `json:"promptDetails,omitempty"`
}

type JournalRequest struct {
	Title         string   `json:"title,omitempty" validate:"max=100"`
	Content       string   `json:"content" validate:"required,min=10,max=5000"`
	Mood          string   `json:"mood" validate:"required,oneof=very-happy happy neutral sad very-sad anxious stressed calm excited grateful frustrated peaceful"`
	MoodIntensity int      `json:"moodIntensity,omitempty" validate:"omitempty,min=1,max=10"`
	Tags          []string `json:"tags,omitempty" validate:"max=10,dive,min=1,max=30"`
	PromptID      string   `json:"promptId,omitempty" validate:"omitempty,objectid"`
	IsPrivate     *bool    `json:"isPrivate,omitempty"`
}

// JournalFilter drives the list endpoint.
type JournalFilter struct {
	UserID    primitive.ObjectID
	Mood      string
	StartDate *time.Time
	EndDate   *time.Time
	Tags      []string
	SortBy    string
	SortDesc  bool
	Skip      int64
	Limit     int64
}

// MoodStat is one row of the per-mood aggregation.
type MoodStat struct {
	Mood         string  `json:"_id" bson:"_id"`
	Count        int     `json:"count" bson:"count"`
	AvgIntensity float64 `json:"avgIntensity" bson:"avgIntensity"`
}

// DayCount is one row of a per-day aggregation.
type DayCount struct {
	Year  int `json:"year" bson:"year"`
	Month int `json:"month" bson:"month"`
	Day   int `json:"day" bson:"day"`
	Count int `json:"count" bson:"count"`
}

// JournalOverview is returned by the stats overview endpoint.
type JournalOverview struct {
	Period           string     `json:"period"`
	TotalEntries     int64      `json:"totalEntries"`
	FavoriteCount    int64      `json:"favoriteCount"`
	MoodStats        []MoodStat `json:"moodStats"`
	WritingStreaks   []DayCount `json:"writingStreaks"`
	AverageWordCount float64    `json:"averageWordCount"`
}
