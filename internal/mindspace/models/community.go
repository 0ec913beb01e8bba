package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnonymousName is the public handle shown for a user on community pages.
func AnonymousName(id primitive.ObjectID) string {
	hex := id.Hex()
	return "User_" + hex[len(hex)-6:]
}

type LeaderboardEntry struct {
	UserID        primitive.ObjectID `json:"-" bson:"_id"`
	DisplayName   string             `json:"displayName" bson:"-"`
	Streak        int                `json:"streak" bson:"streak"`
	EntryCount    int                `json:"entryCount" bson:"entryCount"`
	LongestStreak int                `json:"longestStreak" bson:"longestStreak"`
}

type UserPosition struct {
	Position      int64 `json:"position"`
	Streak        int   `json:"streak"`
	EntryCount    int   `json:"entryCount"`
	LongestStreak int   `json:"longestStreak"`
}

// TagCount is one row of a $group by tag, mood or category.
type TagCount struct {
	ID    string `json:"_id" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

type TrendingPrompt struct {
	PromptID   primitive.ObjectID `json:"promptId" bson:"promptId"`
	Title      string             `json:"title" bson:"title"`
	Category   string             `json:"category" bson:"category"`
	UsageCount int                `json:"usageCount" bson:"usageCount"`
}

// SharedEntry is an anonymized public journal entry.
type SharedEntry struct {
	ID        primitive.ObjectID `json:"id"`
	Content   string             `json:"content"`
	Mood      string             `json:"mood"`
	MoodEmoji string             `json:"moodEmoji"`
	Tags      []string           `json:"tags"`
	Prompt    *PromptSummary     `json:"prompt,omitempty"`
	WordCount int                `json:"wordCount"`
	CreatedAt time.Time          `json:"createdAt"`
}

const sharedPreviewLen = 200

// Share builds the anonymized view of j, cutting content at 200 characters.
func (j *Journal) Share(prompt *PromptSummary) SharedEntry {
	content := j.Content
	if r := []rune(content); len(r) > sharedPreviewLen {
		content = string(r[:sharedPreviewLen]) + "..."
	}
	tags := j.Tags
	if tags == nil {
		tags = []string{}
	}
	return SharedEntry{
		ID:        j.ID,
		Content:   content,
		Mood:      j.Mood,
		MoodEmoji: j.MoodEmoji(),
		Tags:      tags,
		Prompt:    prompt,
		WordCount: j.WordCount,
		CreatedAt: j.CreatedAt,
	}
}

type SharedFilter struct {
	Type     string
	Category string
	Skip     int64
	Limit    int64
}

type UserFilter struct {
	Search   string
	IsActive *bool
	Role     string
	Since    *time.Time
	Skip     int64
	Limit    int64
}

type UserStats struct {
	EntryCount    int64      `json:"entryCount" bson:"entryCount"`
	LastEntryDate *time.Time `json:"lastEntryDate" bson:"lastEntryDate"`
	CurrentStreak int        `json:"currentStreak" bson:"currentStreak"`
	LongestStreak int        `json:"longestStreak" bson:"longestStreak"`
}

// UserWithStats is a user row on the admin user list.
type UserWithStats struct {
	User  `bson:",inline"`
	Stats UserStats `json:"stats" bson:"stats"`
}

type ContentFilter struct {
	Status string
	Since  *time.Time
	Skip   int64
	Limit  int64
}

type CommunityStats struct {
	TotalUsers        int64      `json:"totalUsers"`
	ActiveUsers       int64      `json:"activeUsers"`
	TotalEntries      int64      `json:"totalEntries"`
	AvgEntriesPerUser int64      `json:"avgEntriesPerUser"`
	MoodDistribution  []MoodStat `json:"moodDistribution"`
	PopularTags       []TagCount `json:"popularTags"`
}

// UserCountFilter selects accounts for admin and community counters.
type UserCountFilter struct {
	ActiveOnly   bool
	SharingOnly  bool
	WroteSince   *time.Time
	CreatedSince *time.Time
}

// IntensityRange summarizes mood intensity over a window.
type IntensityRange struct {
	AvgIntensity float64 `json:"avgIntensity" bson:"avgIntensity"`
	MinIntensity int     `json:"minIntensity" bson:"minIntensity"`
	MaxIntensity int     `json:"maxIntensity" bson:"maxIntensity"`
}

// DailyMood is one (day, mood) bucket of the mood trend series.
type DailyMood struct {
	Year         int     `json:"year" bson:"year"`
	Month        int     `json:"month" bson:"month"`
	Day          int     `json:"day" bson:"day"`
	Mood         string  `json:"mood" bson:"mood"`
	Count        int     `json:"count" bson:"count"`
	AvgIntensity float64 `json:"avgIntensity" bson:"avgIntensity"`
}
