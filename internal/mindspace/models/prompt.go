package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var PromptCategories = []string{
	"gratitude", "reflection", "mindfulness", "goal-setting", "self-care",
	"relationships", "work", "creativity", "general",
}

// Prompt is a guided journaling prompt.
type Prompt struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title          string              `json:"title" bson:"title"`
	Content        string              `json:"content" bson:"content"`
	Category       string              `json:"category" bson:"category"`
	Difficulty     string              `json:"difficulty" bson:"difficulty"`
	EstimatedTime  int                 `json:"estimatedTime" bson:"estimatedTime"`
	Tags           []string            `json:"tags" bson:"tags"`
	IsActive       bool                `json:"isActive" bson:"isActive"`
	UsageCount     int                 `json:"usageCount" bson:"usageCount"`
	CreatedBy      *primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	IsSystemPrompt bool                `json:"isSystemPrompt" bson:"isSystemPrompt"`
	Language       string              `json:"language" bson:"language"`
	TargetAudience string              `json:"targetAudience" bson:"targetAudience"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// PromptSummary is the subset of a prompt embedded in journal responses.
type PromptSummary struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Title    string             `json:"title" bson:"title"`
	Content  string             `json:"content" bson:"content"`
	Category string             `json:"category" bson:"category"`
}

type PromptRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=100"`
	Content        string   `json:"content" validate:"required,min=10,max=500"`
	Category       string   `json:"category" validate:"required,oneof=gratitude reflection mindfulness goal-setting self-care relationships work creativity general"`
	Difficulty     string   `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedTime  int      `json:"estimatedTime,omitempty" validate:"omitempty,min=1,max=60"`
	Tags           []string `json:"tags,omitempty" validate:"max=5,dive,min=1,max=30"`
	TargetAudience string   `json:"targetAudience,omitempty" validate:"omitempty,oneof=all beginners experienced anxiety depression stress"`
}

type PromptFilter struct {
	Category   string
	Difficulty string
	Limit      int64
	Skip       int64
}

type GeneratePromptsRequest struct {
	Category string `json:"category,omitempty" validate:"omitempty,oneof=gratitude reflection mindfulness goal-setting self-care relationships work creativity general"`
	Mood     string `json:"userMood,omitempty"`
	Count    int    `json:"count,omitempty" validate:"omitempty,min=1,max=10"`
}
