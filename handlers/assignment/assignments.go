package assignment

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentHandler handles chapter assignment requests
type AssignmentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler {
	return &AssignmentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateAssignmentRequest represents the request body for creating an assignment
type CreateAssignmentRequest struct {
	ChapterNodeID uint       `json:"chapter_node_id" validate:"required,min=1"`
	Title         string     `json:"title" validate:"required,min=1,max=255"`
	Link          string     `json:"link" validate:"required,url"`
	DueDate       *time.Time `json:"due_date"`
}

// UpdateAssignmentRequest represents the request body for updating an assignment
type UpdateAssignmentRequest struct {
	Title   string     `json:"title" validate:"omitempty,min=1,max=255"`
	Link    string     `json:"link" validate:"omitempty,url"`
	DueDate *time.Time `json:"due_date"`
}

// ToggleCompletionRequest represents the request body for a completion toggle
type ToggleCompletionRequest struct {
	Completed bool `json:"completed"`
}

// AssignmentView is an assignment with the caller's completion state.
type AssignmentView struct {
	model.Assignment
	Completed bool `json:"completed"`
}

// ListByChapter handles GET /api/v1/nodes/:id/assignments. Each assignment
// carries the caller's own completion flag.
func (h *AssignmentHandler) ListByChapter(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	nodeID, err := c.ParamsInt("id")
	if err != nil || nodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	var assignments []model.Assignment
	if err := h.db.Where("chapter_node_id = ?", nodeID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}

	ids := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}

	completedByID := make(map[uint]bool)
	if len(ids) > 0 {
		var completions []model.AssignmentCompletion
		if err := h.db.Where("assignment_id IN ? AND student_id = ?", ids, userID).
			Find(&completions).Error; err != nil {
			return response.InternalServerError(c, "Failed to fetch completions")
		}
		for _, comp := range completions {
			completedByID[comp.AssignmentID] = comp.Completed
		}
	}

	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, AssignmentView{
			Assignment: a,
			Completed:  completedByID[a.ID],
		})
	}

	return response.Success(c, views)
}

// Create handles POST /api/v1/assignments (admin only)
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var node model.StudyNode
	if err := h.db.First(&node, req.ChapterNodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Chapter node not found")
		}
		return response.InternalServerError(c, "Failed to verify chapter")
	}

	assignment := model.Assignment{
		ChapterNodeID: req.ChapterNodeID,
		Title:         validation.StripHTML(req.Title),
		Link:          validation.SanitizeString(req.Link),
		DueDate:       req.DueDate,
		CreatedBy:     user.ID,
	}
	if err := h.db.Create(&assignment).Error; err != nil {
		return response.InternalServerError(c, "Failed to create assignment")
	}

	return response.Created(c, assignment)
}

// Update handles PUT /api/v1/assignments/:id (admin only)
func (h *AssignmentHandler) Update(c *fiber.Ctx) error {
	assignmentID, err := c.ParamsInt("id")
	if err != nil || assignmentID < 1 {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var req UpdateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var assignment model.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = validation.StripHTML(req.Title)
	}
	if req.Link != "" {
		updates["link"] = validation.SanitizeString(req.Link)
	}
	if req.DueDate != nil {
		updates["due_date"] = req.DueDate
	}
	if len(updates) == 0 {
		return response.Success(c, assignment)
	}

	if err := h.db.Model(&assignment).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update assignment")
	}

	return response.Success(c, assignment)
}

// Delete handles DELETE /api/v1/assignments/:id (admin only)
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	assignmentID, err := c.ParamsInt("id")
	if err != nil || assignmentID < 1 {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var assignment model.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignment.ID).
			Delete(&model.AssignmentCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&assignment).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete assignment")
	}

	return response.SuccessWithMessage(c, "Assignment deleted successfully", nil)
}

// ToggleCompletion handles PUT /api/v1/assignments/:id/completion (student
// only). Upserts the caller's completion flag; it never touches curriculum
// progress.
func (h *AssignmentHandler) ToggleCompletion(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	assignmentID, err := c.ParamsInt("id")
	if err != nil || assignmentID < 1 {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var req ToggleCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var assignment model.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	var completedAt *time.Time
	if req.Completed {
		now := time.Now()
		completedAt = &now
	}

	completion := model.AssignmentCompletion{
		AssignmentID: assignment.ID,
		StudentID:    userID,
		Completed:    req.Completed,
		CompletedAt:  completedAt,
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at"}),
	}).Create(&completion).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to update completion")
	}

	return response.Success(c, completion)
}
