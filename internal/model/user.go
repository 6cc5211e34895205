package model

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

type UserStats struct {
	TotalQuestionsAttempted int     `json:"total_questions_attempted"`
	CorrectAnswers          int     `json:"correct_answers"`
	Accuracy                float64 `json:"accuracy"`
	Streak                  int     `json:"streak"`
	LongestStreak           int     `json:"longest_streak"`
	XP                      int     `json:"xp"`
	Level                   int     `json:"level"`
}

type CategoryStats struct {
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

type UserSettings struct {
	DailyGoal               int                    `json:"daily_goal"`
	NotificationPreferences map[string]interface{} `json:"notification_preferences"`
	Theme                   string                 `json:"theme"`
}

func DefaultUserStats() UserStats {
	return UserStats{Level: 1}
}

func DefaultUserSettings() UserSettings {
	return UserSettings{
		DailyGoal:               10,
		NotificationPreferences: map[string]interface{}{},
		Theme:                   "light",
	}
}

// swagger:model User
type User struct {
	DocumentBase
	Email           string                                       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName     string                                       `gorm:"size:100;not null" json:"display_name"`
	Password        string                                       `gorm:"size:100;not null" json:"-"`
	Role            UserRole                                     `gorm:"size:16;not null" json:"role"`
	LastLogin       *time.Time                                   `json:"last_login"`
	ProfileImageURL string                                       `gorm:"size:512" json:"profile_image_url,omitempty"`
	Stats           datatypes.JSONType[UserStats]                `json:"stats"`
	CategoryStats   datatypes.JSONType[map[string]CategoryStats] `json:"category_stats"`
	Settings        datatypes.JSONType[UserSettings]             `json:"settings"`

	// Version guards the statistics read-modify-write.
	Version int `gorm:"not null;default:0" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// NewUser returns a user document with zeroed statistics and default settings.
func NewUser(id, email, displayName string, role UserRole) *User {
	now := time.Now()
	return &User{
		DocumentBase:  DocumentBase{ID: id},
		Email:         email,
		DisplayName:   displayName,
		Role:          role,
		LastLogin:     &now,
		Stats:         datatypes.NewJSONType(DefaultUserStats()),
		CategoryStats: datatypes.NewJSONType(map[string]CategoryStats{}),
		Settings:      datatypes.NewJSONType(DefaultUserSettings()),
	}
}
