package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	InsightMoodTrend         = "mood-trend"
	InsightSentimentAnalysis = "sentiment-analysis"
	InsightWritingPattern    = "writing-pattern"
	InsightWellnessTip       = "wellness-tip"
	InsightAchievement       = "achievement"
	InsightStreakMilestone   = "streak-milestone"
)

type InsightPeriod struct {
	StartDate time.Time `json:"startDate" bson:"startDate"`
	EndDate   time.Time `json:"endDate" bson:"endDate"`
	Type      string    `json:"type" bson:"type"`
}

// Insight is a generated observation about a user's journaling.
type Insight struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	User        primitive.ObjectID     `json:"user" bson:"user"`
	Type        string                 `json:"type" bson:"type"`
	Title       string                 `json:"title" bson:"title"`
	Description string                 `json:"description" bson:"description"`
	Data        map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	Period      InsightPeriod          `json:"period" bson:"period"`
	IsRead      bool                   `json:"isRead" bson:"isRead"`
	IsFavorite  bool                   `json:"isFavorite" bson:"isFavorite"`
	Priority    string                 `json:"priority" bson:"priority"`
	Category    string                 `json:"category" bson:"category"`
	Actionable  bool                   `json:"actionable" bson:"actionable"`
	ActionItems []string               `json:"actionItems" bson:"actionItems"`
	GeneratedBy string                 `json:"generatedBy" bson:"generatedBy"`
	Confidence  float64                `json:"confidence" bson:"confidence"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt" bson:"updatedAt"`
}

type InsightFilter struct {
	UserID primitive.ObjectID
	Type   string
	IsRead *bool
	Since  *time.Time
	Skip   int64
	Limit  int64
}

type GenerateInsightRequest struct {
	Type   string `json:"type" validate:"required"`
	Period string `json:"period,omitempty" validate:"omitempty,oneof=daily weekly monthly yearly"`
}

type AnalyzeEntryRequest struct {
	EntryID string `json:"entryId"`
}
