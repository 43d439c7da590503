package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Username     string         `gorm:"not null" json:"username"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	NodeProgress          []NodeProgress         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AssignmentCompletions []AssignmentCompletion `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	TestSubmissions       []TestSubmission       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Doubts                []Doubt                `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist        []JWTTokenBlacklist    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// JWTTokenBlacklist stores revoked token JTIs until they expire
type JWTTokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"` // JTI
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}
