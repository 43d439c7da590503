package model

import (
	"time"

	"gorm.io/gorm"
)

// DoubtStatus is the lifecycle state of a student doubt. Transitions are
// pending→replied (first reply) and pending|replied→resolved (explicit admin
// action); status never reverts automatically.
type DoubtStatus string

const (
	DoubtStatusPending  DoubtStatus = "pending"
	DoubtStatusReplied  DoubtStatus = "replied"
	DoubtStatusResolved DoubtStatus = "resolved"
)

// ValidDoubtStatus reports whether s is a known doubt status.
func ValidDoubtStatus(s DoubtStatus) bool {
	switch s {
	case DoubtStatusPending, DoubtStatusReplied, DoubtStatusResolved:
		return true
	}
	return false
}

// Doubt is a student question raised against one chapter node.
type Doubt struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ChapterNodeID uint           `gorm:"index;not null" json:"chapter_node_id"`
	StudentID     uint           `gorm:"index;not null" json:"student_id"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	Status        DoubtStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Relationships
	Replies []DoubtReply `gorm:"foreignKey:DoubtID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

// DoubtReply is one message in a doubt thread, ordered by creation time.
type DoubtReply struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DoubtID   uint           `gorm:"index;not null" json:"doubt_id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Message   string         `gorm:"type:text;not null" json:"message"`
}

// DoubtResponse is the admin-view shape: a doubt enriched with the student
// username and chapter name resolved from id-set lookups.
type DoubtResponse struct {
	ID            uint         `json:"id"`
	ChapterNodeID uint         `json:"chapter_node_id"`
	StudentID     uint         `json:"student_id"`
	StudentName   string       `json:"student_name"`
	ChapterName   string       `json:"chapter_name"`
	Message       string       `json:"message"`
	Status        DoubtStatus  `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	Replies       []DoubtReply `json:"replies"`
}
