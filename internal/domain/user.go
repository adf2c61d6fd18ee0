package domain

import "time"

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex:idx_users_username;size:20;not null" json:"username"`
	Mobile        string    `gorm:"uniqueIndex:idx_users_mobile;size:11;not null" json:"mobile"`
	PasswordHash  string    `gorm:"size:1024;not null" json:"-"`
	Email         string    `gorm:"size:255" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
