package models

import "time"

type User struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never serialized
	RoleID       int    `json:"role_id"`
	OfficeID     int64  `json:"office_id"`
	Points       int    `json:"points"`

	// telegram notification settings
	TelegramChatID int64 `json:"-"`
	NotifyTelegram bool  `json:"notify_telegram"`

	// refresh token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
