package models

import "time"

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// DefaultCategories are inserted by the seed command.
var DefaultCategories = []Category{
	{Name: "Computer Science", Description: "Algorithms, systems and theory of computation"},
	{Name: "Software Engineering", Description: "Methods and tools for building software"},
	{Name: "Artificial Intelligence", Description: "Machine learning, reasoning and perception"},
	{Name: "Data Science", Description: "Statistics, data management and analytics"},
	{Name: "Networks & Security", Description: "Communication systems and information security"},
}
