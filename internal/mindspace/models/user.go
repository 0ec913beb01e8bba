package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type NotificationPreferences struct {
	Email bool `json:"email" bson:"email"`
	Push  bool `json:"push" bson:"push"`
}

type PrivacyPreferences struct {
	ShareAnonymously bool `json:"shareAnonymously" bson:"shareAnonymously"`
	DataRetention    int  `json:"dataRetention" bson:"dataRetention"`
}

type Preferences struct {
	Theme         string                  `json:"theme" bson:"theme"`
	Notifications NotificationPreferences `json:"notifications" bson:"notifications"`
	Privacy       PrivacyPreferences      `json:"privacy" bson:"privacy"`
}

// DefaultPreferences are applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		Notifications: NotificationPreferences{Email: true, Push: true},
		Privacy:       PrivacyPreferences{ShareAnonymously: false, DataRetention: 365},
	}
}

type WellnessGoal struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Title        string             `json:"title" bson:"title"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	TargetValue  float64            `json:"targetValue,omitempty" bson:"targetValue,omitempty"`
	CurrentValue float64            `json:"currentValue" bson:"currentValue"`
	Unit         string             `json:"unit,omitempty" bson:"unit,omitempty"`
	Deadline     *time.Time         `json:"deadline,omitempty" bson:"deadline,omitempty"`
	IsCompleted  bool               `json:"isCompleted" bson:"isCompleted"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

type Streak struct {
	Current       int        `json:"current" bson:"current"`
	Longest       int        `json:"longest" bson:"longest"`
	LastEntryDate *time.Time `json:"lastEntryDate,omitempty" bson:"lastEntryDate,omitempty"`
}

// User is a mindspace account stored in the users collection.
type User struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Email                string             `json:"email" bson:"email"`
	Password             string             `json:"-" bson:"password,omitempty"`
	GoogleID             string             `json:"googleId,omitempty" bson:"googleId,omitempty"`
	Avatar               string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role                 string             `json:"role" bson:"role"`
	Preferences          Preferences        `json:"preferences" bson:"preferences"`
	WellnessGoals        []WellnessGoal     `json:"wellnessGoals" bson:"wellnessGoals"`
	Streak               Streak             `json:"streak" bson:"streak"`
	IsActive             bool               `json:"isActive" bson:"isActive"`
	LastLogin            *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	ResetPasswordToken   string             `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time         `json:"-" bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PublicProfile is the user shape returned by auth endpoints.
type PublicProfile struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Avatar        string         `json:"avatar,omitempty"`
	Role          string         `json:"role"`
	Preferences   Preferences    `json:"preferences"`
	Streak        Streak         `json:"streak"`
	WellnessGoals []WellnessGoal `json:"wellnessGoals"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (u *User) Profile() PublicProfile {
	goals := u.WellnessGoals
	if goals == nil {
		goals = []WellnessGoal{}
	}
	return PublicProfile{
		ID:            u.ID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		Avatar:        u.Avatar,
		Role:          u.Role,
		Preferences:   u.Preferences,
		Streak:        u.Streak,
		WellnessGoals: goals,
		CreatedAt:     u.CreatedAt,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar      *string      `json:"avatar,omitempty" validate:"omitempty,url"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type GoalRequest struct {
	Title        string     `json:"title" validate:"required,min=3,max=100"`
	Description  string     `json:"description,omitempty" validate:"max=500"`
	TargetValue  float64    `json:"targetValue,omitempty" validate:"gte=0"`
	CurrentValue float64    `json:"currentValue,omitempty" validate:"gte=0"`
	Unit         string     `json:"unit,omitempty" validate:"max=20"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	IsCompleted  bool       `json:"isCompleted,omitempty"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type DeactivateRequest struct {
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Name string `json:"name,omitempty"`
}
