package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Test is a timed multiple-choice test attached to a chapter node.
// Deadline is stored but not checked when a student starts an attempt.
type Test struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ChapterNodeID uint           `gorm:"index;not null" json:"chapter_node_id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	TimerMinutes  int            `gorm:"not null;default:10" json:"timer_minutes"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	CreatedBy     uint           `gorm:"index" json:"created_by"`

	// Relationships
	Questions   []TestQuestion   `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Submissions []TestSubmission `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"-"`
}

// TestQuestion is a four-option MCQ. CorrectOption is one of "a".."d".
type TestQuestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	TestID        uint           `gorm:"index;not null" json:"test_id"`
	QuestionText  string         `gorm:"type:text;not null" json:"question_text"`
	OptionA       string         `gorm:"type:text;not null" json:"option_a"`
	OptionB       string         `gorm:"type:text;not null" json:"option_b"`
	OptionC       string         `gorm:"type:text;not null" json:"option_c"`
	OptionD       string         `gorm:"type:text;not null" json:"option_d"`
	CorrectOption string         `gorm:"type:varchar(1);not null" json:"correct_option"`
	SortOrder     int            `gorm:"default:0" json:"sort_order"`
}

// TestSubmission is a per-(test, student) attempt record. At most one row per
// pair; once SubmittedAt is set the attempt is immutable and the test renders
// read-only/graded for that student.
// Answers maps question id (stringified) to the chosen option letter.
type TestSubmission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TestID      uint           `gorm:"uniqueIndex:idx_test_student;not null" json:"test_id"`
	StudentID   uint           `gorm:"uniqueIndex:idx_test_student;not null" json:"student_id"`
	Answers     datatypes.JSON `gorm:"type:jsonb" json:"answers"`
	Score       int            `gorm:"default:0" json:"score"`
	Total       int            `gorm:"default:0" json:"total"`
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
}

// Submitted reports whether the attempt has been finalized.
func (s *TestSubmission) Submitted() bool {
	return s.SubmittedAt != nil
}

// ExpiresAt returns the moment the per-attempt countdown runs out.
func (s *TestSubmission) ExpiresAt(timerMinutes int) time.Time {
	return s.StartedAt.Add(time.Duration(timerMinutes) * time.Minute)
}
