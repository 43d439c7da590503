package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject is a root container for a curriculum tree (e.g. "Mathematics")
type Subject struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Color     string         `gorm:"type:varchar(50)" json:"color,omitempty"`
	Icon      string         `gorm:"type:varchar(20)" json:"icon,omitempty"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedBy uint           `gorm:"index" json:"created_by"`

	// Relationships
	Nodes []StudyNode `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"nodes,omitempty"`
}

// Node levels within a subject tree. Depth is capped at three levels:
// a subtopic can never have children.
const (
	NodeLevelChapter  = 0
	NodeLevelTopic    = 1
	NodeLevelSubtopic = 2
)

// StudyNode is one node of a subject's curriculum tree. Level is a strict
// function of depth from the root: chapters are 0, their children 1, their
// grandchildren 2.
type StudyNode struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	NodeLevel int            `gorm:"not null;default:0" json:"node_level"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	SubjectID uint           `gorm:"index;not null" json:"subject_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"` // nil for root chapters

	// Relationships
	Subject     Subject      `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
	Resources   []Resource   `gorm:"foreignKey:ChapterNodeID;constraint:OnDelete:CASCADE" json:"-"`
	Assignments []Assignment `gorm:"foreignKey:ChapterNodeID;constraint:OnDelete:CASCADE" json:"-"`
	Tests       []Test       `gorm:"foreignKey:ChapterNodeID;constraint:OnDelete:CASCADE" json:"-"`
	Doubts      []Doubt      `gorm:"foreignKey:ChapterNodeID;constraint:OnDelete:CASCADE" json:"-"`
}

// NodeProgress is a per-(node, student) completion mark. Absence of a row
// means "not completed". Toggling never cascades to children or parents.
type NodeProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	NodeID      uint       `gorm:"uniqueIndex:idx_node_user;not null" json:"node_id"`
	UserID      uint       `gorm:"uniqueIndex:idx_node_user;not null" json:"user_id"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Relationships
	Node StudyNode `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE" json:"-"`
	User User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
