package models

import (
	"strings"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"

	DefaultAvatarID  = "default_avatar_id"
	DefaultAvatarURL = "default_avatar_url"
)

// Asset is a reference to an object held by the asset store.
type Asset struct {
	PublicID  string `json:"publicId"`
	SecureURL string `json:"secureUrl"`
}

func (a Asset) IsZero() bool {
	return a.PublicID == ""
}

func DefaultAvatar() Asset {
	return Asset{PublicID: DefaultAvatarID, SecureURL: DefaultAvatarURL}
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:student" json:"role"` // admin, student
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	Avatar       Asset     `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`

	ResetTokenHash    string     `gorm:"index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	// Derived from the enrollments table on read.
	EnrolledCourses []uint `gorm:"-" json:"enrolledCourses"`
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RevokedToken records a logged-out session token until its natural expiry.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

type ContactMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Message   string    `gorm:"not null" json:"message"`
}
