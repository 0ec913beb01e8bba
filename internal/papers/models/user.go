package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAuthor   = "author"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// User is a portal account. Deletes are soft so reviews keep their author.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Email       string         `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"not null"`
	Institution string         `json:"institution,omitempty" gorm:"size:255"`
	Role        string         `json:"role" gorm:"size:20;index;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Institution string `json:"institution,omitempty" validate:"max=255"`
	Role        string `json:"role" validate:"required,oneof=author reviewer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=author reviewer admin"`
}

// ProfileRequest updates the caller's own account. An empty password keeps
// the current one.
type ProfileRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Institution string `json:"institution" validate:"max=255"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// UserRequest is the admin form for creating or editing any account.
type UserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
	Institution string `json:"institution,omitempty" validate:"max=255"`
	Role        string `json:"role" validate:"required,oneof=author reviewer admin"`
}

// ReviewerLoad is a reviewer with their assignment counts.
type ReviewerLoad struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"institution,omitempty"`
	Pending     int64  `json:"pendingAssignments"`
	Completed   int64  `json:"completedAssignments"`
}
