package tree

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/utils/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrNodeNotFound    = errors.New("node not found")
	ErrMaxDepth        = errors.New("subtopics cannot have children")
	ErrParentMismatch  = errors.New("parent belongs to a different subject")
)

const treeCacheTTL = 10 * time.Minute

// TreeService owns the curriculum hierarchy: building per-student trees,
// node CRUD and progress toggles. All writes invalidate every cached copy of
// the touched subject's tree.
type TreeService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewTreeService creates a new tree service. The cache may be nil; the
// service then serves every read from the database.
func NewTreeService(db *gorm.DB, redisCache *cache.RedisCache) *TreeService {
	return &TreeService{
		db:    db,
		cache: redisCache,
	}
}

// SubjectTree is the per-student view of one subject's curriculum.
type SubjectTree struct {
	Subject  model.Subject `json:"subject"`
	Nodes    []*TreeNode   `json:"nodes"`
	Progress int           `json:"progress"`
}

func treeCacheKey(subjectID, userID uint) string {
	return fmt.Sprintf("tree:subject:%d:user:%d", subjectID, userID)
}

// GetSubjectTree returns the subject's curriculum nested and annotated with
// the given user's completion marks, served from cache when possible.
func (s *TreeService) GetSubjectTree(ctx context.Context, subjectID, userID uint) (*SubjectTree, error) {
	if s.cache != nil {
		var cached SubjectTree
		if err := s.cache.GetJSON(ctx, treeCacheKey(subjectID, userID), &cached); err == nil {
			return &cached, nil
		}
	}

	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch subject: %w", err)
	}

	forest, err := s.buildForest(ctx, subjectID, userID)
	if err != nil {
		return nil, err
	}

	result := &SubjectTree{
		Subject:  subject,
		Nodes:    forest,
		Progress: Progress(forest),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, treeCacheKey(subjectID, userID), result, treeCacheTTL); err != nil {
			log.Println("Failed to cache subject tree:", err)
		}
	}

	return result, nil
}

// SubjectProgress returns the rounded leaf completion percentage for one
// subject and user. Used by the dashboard without rendering the full tree.
func (s *TreeService) SubjectProgress(ctx context.Context, subjectID, userID uint) (completed, total, percent int, err error) {
	forest, err := s.buildForest(ctx, subjectID, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	completed, total = LeafStats(forest)
	return completed, total, Progress(forest), nil
}

func (s *TreeService) buildForest(ctx context.Context, subjectID, userID uint) ([]*TreeNode, error) {
	var nodes []model.StudyNode
	if err := s.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("sort_order ASC, id ASC").
		Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch nodes: %w", err)
	}

	var progress []model.NodeProgress
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch progress: %w", err)
	}

	completion := make(map[uint]bool, len(progress))
	for _, p := range progress {
		completion[p.NodeID] = true
	}

	return BuildForest(nodes, completion), nil
}

// InvalidateSubject drops every cached tree of a subject, for all users.
func (s *TreeService) InvalidateSubject(ctx context.Context, subjectID uint) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("tree:subject:%d:user:*", subjectID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		log.Println("Failed to invalidate subject tree cache:", err)
	}
}

// CreateNode adds a node under the given parent (nil parent means a root
// chapter). The node's level is always the parent's level plus one; a
// subtopic can never get children.
func (s *TreeService) CreateNode(ctx context.Context, subjectID uint, parentID *uint, name string, sortOrder int) (*model.StudyNode, error) {
	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch subject: %w", err)
	}

	level := model.NodeLevelChapter
	if parentID != nil {
		var parent model.StudyNode
		if err := s.db.WithContext(ctx).First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNodeNotFound
			}
			return nil, fmt.Errorf("failed to fetch parent node: %w", err)
		}
		if parent.SubjectID != subjectID {
			return nil, ErrParentMismatch
		}
		if parent.NodeLevel >= model.NodeLevelSubtopic {
			return nil, ErrMaxDepth
		}
		level = parent.NodeLevel + 1
	}

	node := model.StudyNode{
		Name:      name,
		NodeLevel: level,
		SortOrder: sortOrder,
		SubjectID: subjectID,
		ParentID:  parentID,
	}
	if err := s.db.WithContext(ctx).Create(&node).Error; err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	s.InvalidateSubject(ctx, subjectID)
	return &node, nil
}

// RenameNode updates a node's name and sort order.
func (s *TreeService) RenameNode(ctx context.Context, nodeID uint, name string, sortOrder *int) (*model.StudyNode, error) {
	var node model.StudyNode
	if err := s.db.WithContext(ctx).First(&node, nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to fetch node: %w", err)
	}

	updates := map[string]interface{}{"name": name}
	if sortOrder != nil {
		updates["sort_order"] = *sortOrder
	}
	if err := s.db.WithContext(ctx).Model(&node).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}

	s.InvalidateSubject(ctx, node.SubjectID)
	return &node, nil
}

// DeleteNode removes a node, all of its descendants and everything attached
// to them (resources, assignments, tests, doubts, progress marks) in one
// transaction. The backend owns referential integrity here; soft deletes
// never fire the database cascades.
func (s *TreeService) DeleteNode(ctx context.Context, nodeID uint) error {
	var node model.StudyNode
	if err := s.db.WithContext(ctx).First(&node, nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNodeNotFound
		}
		return fmt.Errorf("failed to fetch node: %w", err)
	}

	var siblings []model.StudyNode
	if err := s.db.WithContext(ctx).
		Where("subject_id = ?", node.SubjectID).
		Find(&siblings).Error; err != nil {
		return fmt.Errorf("failed to fetch subject nodes: %w", err)
	}

	nodeIDs := collectSubtreeIDs(siblings, nodeID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doubtIDs []uint
		if err := tx.Model(&model.Doubt{}).
			Where("chapter_node_id IN ?", nodeIDs).
			Pluck("id", &doubtIDs).Error; err != nil {
			return err
		}
		if len(doubtIDs) > 0 {
			if err := tx.Where("doubt_id IN ?", doubtIDs).Delete(&model.DoubtReply{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", doubtIDs).Delete(&model.Doubt{}).Error; err != nil {
				return err
			}
		}

		var testIDs []uint
		if err := tx.Model(&model.Test{}).
			Where("chapter_node_id IN ?", nodeIDs).
			Pluck("id", &testIDs).Error; err != nil {
			return err
		}
		if len(testIDs) > 0 {
			if err := tx.Where("test_id IN ?", testIDs).Delete(&model.TestQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("test_id IN ?", testIDs).Delete(&model.TestSubmission{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", testIDs).Delete(&model.Test{}).Error; err != nil {
				return err
			}
		}

		var assignmentIDs []uint
		if err := tx.Model(&model.Assignment{}).
			Where("chapter_node_id IN ?", nodeIDs).
			Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Where("assignment_id IN ?", assignmentIDs).Delete(&model.AssignmentCompletion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", assignmentIDs).Delete(&model.Assignment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("chapter_node_id IN ?", nodeIDs).Delete(&model.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("node_id IN ?", nodeIDs).Delete(&model.NodeProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", nodeIDs).Delete(&model.StudyNode{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete node subtree: %w", err)
	}

	s.InvalidateSubject(ctx, node.SubjectID)
	return nil
}

// DeleteSubject removes a subject together with its whole tree and everything
// hanging off it, using the same per-node cascade as DeleteNode.
func (s *TreeService) DeleteSubject(ctx context.Context, subjectID uint) error {
	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("failed to fetch subject: %w", err)
	}

	var roots []model.StudyNode
	if err := s.db.WithContext(ctx).
		Where("subject_id = ? AND parent_id IS NULL", subjectID).
		Find(&roots).Error; err != nil {
		return fmt.Errorf("failed to fetch chapters: %w", err)
	}

	for _, root := range roots {
		if err := s.DeleteNode(ctx, root.ID); err != nil && !errors.Is(err, ErrNodeNotFound) {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Delete(&subject).Error; err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	s.InvalidateSubject(ctx, subjectID)
	return nil
}

// collectSubtreeIDs returns rootID plus every descendant id reachable from it
// within the flat node slice.
func collectSubtreeIDs(nodes []model.StudyNode, rootID uint) []uint {
	children := make(map[uint][]uint, len(nodes))
	for _, n := range nodes {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}

	ids := []uint{rootID}
	queue := []uint{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range children[id] {
			ids = append(ids, childID)
			queue = append(queue, childID)
		}
	}
	return ids
}

// SetProgress upserts the (node, user) completion mark to the given value.
// Toggling never cascades to parents or children.
func (s *TreeService) SetProgress(ctx context.Context, nodeID, userID uint, completed bool) (*model.NodeProgress, error) {
	var node model.StudyNode
	if err := s.db.WithContext(ctx).First(&node, nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to fetch node: %w", err)
	}

	var completedAt *time.Time
	if completed {
		now := time.Now()
		completedAt = &now
	}

	progress := model.NodeProgress{
		NodeID:      nodeID,
		UserID:      userID,
		Completed:   completed,
		CompletedAt: completedAt,
	}
	// Returning back-fills the primary key when the upsert hits an
	// existing (node, user) row.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at"}),
	}, clause.Returning{}).Create(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	s.InvalidateSubject(ctx, node.SubjectID)
	return &progress, nil
}
