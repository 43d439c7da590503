package model

import (
	"time"

	"gorm.io/gorm"
)

// ResourceType is the declared kind of a chapter resource. Video types get an
// embedded player client-side; everything else opens the raw URL.
type ResourceType string

const (
	ResourceTypeNote    ResourceType = "note"
	ResourceTypePDF     ResourceType = "pdf"
	ResourceTypeWord    ResourceType = "word"
	ResourceTypeMP4     ResourceType = "mp4"
	ResourceTypeYouTube ResourceType = "youtube"
)

// ValidResourceType reports whether t is one of the known resource types.
func ValidResourceType(t ResourceType) bool {
	switch t {
	case ResourceTypeNote, ResourceTypePDF, ResourceTypeWord, ResourceTypeMP4, ResourceTypeYouTube:
		return true
	}
	return false
}

// Resource is a study material attached to a chapter node. URL is either an
// uploaded-file URL (object storage) or an external link.
type Resource struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ChapterNodeID uint           `gorm:"index;not null" json:"chapter_node_id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	ResourceType  ResourceType   `gorm:"type:varchar(20);not null" json:"resource_type"`
	URL           string         `gorm:"type:text;not null" json:"url"`
	SortOrder     int            `gorm:"default:0" json:"sort_order"`
	CreatedBy     uint           `gorm:"index" json:"created_by"`
}

// Assignment is an externally linked task attached to a chapter node.
type Assignment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ChapterNodeID uint           `gorm:"index;not null" json:"chapter_node_id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Link          string         `gorm:"type:text;not null" json:"link"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	CreatedBy     uint           `gorm:"index" json:"created_by"`

	// Relationships
	Completions []AssignmentCompletion `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// AssignmentCompletion is a per-(assignment, student) toggle, independent of
// curriculum progress math.
type AssignmentCompletion struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"uniqueIndex:idx_assignment_student;not null" json:"assignment_id"`
	StudentID    uint       `gorm:"uniqueIndex:idx_assignment_student;not null" json:"student_id"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
