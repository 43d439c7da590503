package stats

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/services/tree"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"gorm.io/gorm"
)

// StatsHandler serves the dashboard counters. Simple counts only, nothing
// resembling an analytics pipeline.
type StatsHandler struct {
	db          *gorm.DB
	treeService *tree.TreeService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(db *gorm.DB, treeService *tree.TreeService) *StatsHandler {
	return &StatsHandler{
		db:          db,
		treeService: treeService,
	}
}

// SubjectStat is one subject's progress line on the dashboard.
type SubjectStat struct {
	SubjectID       uint   `json:"subject_id"`
	Name            string `json:"name"`
	Color           string `json:"color,omitempty"`
	Icon            string `json:"icon,omitempty"`
	CompletedLeaves int    `json:"completed_leaves"`
	TotalLeaves     int    `json:"total_leaves"`
	Progress        int    `json:"progress"`
}

// DashboardStats is the caller's full dashboard summary.
type DashboardStats struct {
	Subjects        int           `json:"subjects"`
	Chapters        int64         `json:"chapters"`
	CompletedLeaves int           `json:"completed_leaves"`
	TotalLeaves     int           `json:"total_leaves"`
	OverallProgress int           `json:"overall_progress"`
	PendingDoubts   int64         `json:"pending_doubts"`
	PerSubject      []SubjectStat `json:"per_subject"`
}

// Dashboard handles GET /api/v1/stats/dashboard
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var subjects []model.Subject
	if err := h.db.Order("sort_order ASC, id ASC").Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	var chapters int64
	if err := h.db.Model(&model.StudyNode{}).
		Where("parent_id IS NULL").
		Count(&chapters).Error; err != nil {
		return response.InternalServerError(c, "Failed to count chapters")
	}

	var pendingDoubts int64
	if err := h.db.Model(&model.Doubt{}).
		Where("student_id = ? AND status = ?", userID, model.DoubtStatusPending).
		Count(&pendingDoubts).Error; err != nil {
		return response.InternalServerError(c, "Failed to count doubts")
	}

	stats := DashboardStats{
		Subjects:   len(subjects),
		Chapters:   chapters,
		PerSubject: make([]SubjectStat, 0, len(subjects)),
	}

	for _, s := range subjects {
		completed, total, percent, err := h.treeService.SubjectProgress(c.Context(), s.ID, userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to compute progress")
		}
		stats.CompletedLeaves += completed
		stats.TotalLeaves += total
		stats.PerSubject = append(stats.PerSubject, SubjectStat{
			SubjectID:       s.ID,
			Name:            s.Name,
			Color:           s.Color,
			Icon:            s.Icon,
			CompletedLeaves: completed,
			TotalLeaves:     total,
			Progress:        percent,
		})
	}

	if stats.TotalLeaves > 0 {
		stats.OverallProgress = (100*stats.CompletedLeaves + stats.TotalLeaves/2) / stats.TotalLeaves
	}
	stats.PendingDoubts = pendingDoubts

	return response.Success(c, stats)
}
