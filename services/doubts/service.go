package doubts

import (
	"context"
	"errors"
	"fmt"

	"github.com/sreevasthav1710/study10/model"
	"gorm.io/gorm"
)

var (
	ErrDoubtNotFound = errors.New("doubt not found")
	ErrNodeNotFound  = errors.New("chapter node not found")
)

// DoubtService owns doubt threads: creation, listing with enrichment, replies
// and resolution, plus realtime fan-out through the hub.
type DoubtService struct {
	db  *gorm.DB
	hub *Hub
}

// NewDoubtService creates a new doubt service
func NewDoubtService(db *gorm.DB, hub *Hub) *DoubtService {
	return &DoubtService{db: db, hub: hub}
}

// Hub exposes the notification hub for the SSE handler.
func (s *DoubtService) Hub() *Hub {
	return s.hub
}

// Create raises a new doubt on a chapter node with status pending and
// broadcasts a notification to connected admin streams.
func (s *DoubtService) Create(ctx context.Context, chapterNodeID, studentID uint, message string) (*model.Doubt, error) {
	var node model.StudyNode
	if err := s.db.WithContext(ctx).First(&node, chapterNodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to fetch node: %w", err)
	}

	doubt := model.Doubt{
		ChapterNodeID: chapterNodeID,
		StudentID:     studentID,
		Message:       message,
		Status:        model.DoubtStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&doubt).Error; err != nil {
		return nil, fmt.Errorf("failed to create doubt: %w", err)
	}

	var student model.User
	studentName := ""
	if err := s.db.WithContext(ctx).First(&student, studentID).Error; err == nil {
		studentName = student.Username
	}

	if s.hub != nil {
		s.hub.Broadcast(Notification{
			DoubtID:       doubt.ID,
			ChapterNodeID: chapterNodeID,
			StudentID:     studentID,
			StudentName:   studentName,
			Message:       doubt.Message,
			CreatedAt:     doubt.CreatedAt,
		})
	}

	return &doubt, nil
}

// ListForStudent returns the student's own doubts, newest first, with replies
// in thread order.
func (s *DoubtService) ListForStudent(ctx context.Context, studentID uint, chapterNodeID *uint) ([]model.Doubt, error) {
	query := s.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("student_id = ?", studentID)
	if chapterNodeID != nil {
		query = query.Where("chapter_node_id = ?", *chapterNodeID)
	}

	var doubts []model.Doubt
	if err := query.Order("created_at DESC").Find(&doubts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch doubts: %w", err)
	}
	return doubts, nil
}

// ListAll returns every doubt across students for the admin view, optionally
// filtered by status, enriched with student username and chapter name.
func (s *DoubtService) ListAll(ctx context.Context, status *model.DoubtStatus) ([]model.DoubtResponse, error) {
	query := s.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var doubts []model.Doubt
	if err := query.Order("created_at DESC").Find(&doubts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch doubts: %w", err)
	}
	if len(doubts) == 0 {
		return []model.DoubtResponse{}, nil
	}

	studentIDs := make([]uint, 0, len(doubts))
	nodeIDs := make([]uint, 0, len(doubts))
	for _, d := range doubts {
		studentIDs = append(studentIDs, d.StudentID)
		nodeIDs = append(nodeIDs, d.ChapterNodeID)
	}

	var students []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", studentIDs).Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}
	namesByID := make(map[uint]string, len(students))
	for _, u := range students {
		namesByID[u.ID] = u.Username
	}

	var nodes []model.StudyNode
	if err := s.db.WithContext(ctx).Where("id IN ?", nodeIDs).Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch nodes: %w", err)
	}
	chaptersByID := make(map[uint]string, len(nodes))
	for _, n := range nodes {
		chaptersByID[n.ID] = n.Name
	}

	responses := make([]model.DoubtResponse, 0, len(doubts))
	for _, d := range doubts {
		replies := d.Replies
		if replies == nil {
			replies = []model.DoubtReply{}
		}
		responses = append(responses, model.DoubtResponse{
			ID:            d.ID,
			ChapterNodeID: d.ChapterNodeID,
			StudentID:     d.StudentID,
			StudentName:   namesByID[d.StudentID],
			ChapterName:   chaptersByID[d.ChapterNodeID],
			Message:       d.Message,
			Status:        d.Status,
			CreatedAt:     d.CreatedAt,
			Replies:       replies,
		})
	}
	return responses, nil
}

// Get returns one doubt with its replies in thread order.
func (s *DoubtService) Get(ctx context.Context, doubtID uint) (*model.Doubt, error) {
	var doubt model.Doubt
	err := s.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&doubt, doubtID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoubtNotFound
		}
		return nil, fmt.Errorf("failed to fetch doubt: %w", err)
	}
	return &doubt, nil
}

// Reply appends a message to the thread and sets status to replied
// unconditionally. Replying to an already-replied doubt just re-applies the
// same value; a resolved doubt goes back to replied only through this
// explicit write, never silently.
func (s *DoubtService) Reply(ctx context.Context, doubtID, userID uint, message string) (*model.DoubtReply, error) {
	var doubt model.Doubt
	if err := s.db.WithContext(ctx).First(&doubt, doubtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoubtNotFound
		}
		return nil, fmt.Errorf("failed to fetch doubt: %w", err)
	}

	reply := model.DoubtReply{
		DoubtID: doubtID,
		UserID:  userID,
		Message: message,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&model.Doubt{}).
			Where("id = ?", doubtID).
			Update("status", model.DoubtStatusReplied).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add reply: %w", err)
	}

	return &reply, nil
}

// Resolve marks the doubt resolved. Resolution is an explicit action from any
// state and never reverts on its own.
func (s *DoubtService) Resolve(ctx context.Context, doubtID uint) (*model.Doubt, error) {
	var doubt model.Doubt
	if err := s.db.WithContext(ctx).First(&doubt, doubtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoubtNotFound
		}
		return nil, fmt.Errorf("failed to fetch doubt: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&doubt).
		Update("status", model.DoubtStatusResolved).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve doubt: %w", err)
	}

	doubt.Status = model.DoubtStatusResolved
	return &doubt, nil
}
