package types

import (
	"time"
)

type User struct {
	Id           string       `json:"id"`
	Username     string       `json:"username"`
	EmailAddress string       `json:"email_address,omitempty"`
	Password     string       `json:"-"`
	Settings     UserSettings `json:"settings"`
	CreatedAt    time.Time    `json:"created_at,omitempty"`
}

type UserSettings struct {
	SelectedLanguage     string  `json:"selected_language"`
	AutoTranslate        bool    `json:"auto_translate"`
	TranslationTextSize  float64 `json:"translation_text_size"`
	IsAutoDetectLanguage bool    `json:"is_auto_detect_language"`
}

const (
	RoleCreator     = "creator"
	RoleParticipant = "participant"
)

type Participant struct {
	UserId   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type Room struct {
	Id              string        `json:"id"`
	Code            string        `json:"code"`
	CreatorId       string        `json:"creator_id"`
	Participants    []Participant `json:"participants"`
	MaxParticipants int           `json:"max_participants"`
	Active          bool          `json:"active"`
	CreatedAt       time.Time     `json:"created_at"`
}

type Session struct {
	Id                string    `json:"id"`
	UserId            string    `json:"user_id"`
	Language          string    `json:"language"`
	Active            bool      `json:"active"`
	TranslationsCount int       `json:"translations_count"`
	StartTime         time.Time `json:"start_time"`
}
