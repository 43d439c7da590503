package subject

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/services/tree"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
	"gorm.io/gorm"
)

// SubjectHandler handles subject-related requests
type SubjectHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	treeService *tree.TreeService
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(db *gorm.DB, treeService *tree.TreeService) *SubjectHandler {
	return &SubjectHandler{
		db:          db,
		validator:   validation.NewValidator(),
		treeService: treeService,
	}
}

// CreateSubjectRequest represents the request body for creating a subject
type CreateSubjectRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Color     string `json:"color" validate:"omitempty,max=50"`
	Icon      string `json:"icon" validate:"omitempty,max=20"`
	SortOrder int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// UpdateSubjectRequest represents the request body for updating a subject
type UpdateSubjectRequest struct {
	Name      string `json:"name" validate:"omitempty,min=1,max=255"`
	Color     string `json:"color" validate:"omitempty,max=50"`
	Icon      string `json:"icon" validate:"omitempty,max=20"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,gte=0"`
}

// SubjectOverview is a subject with the caller's progress summary attached.
type SubjectOverview struct {
	model.Subject
	Progress        int `json:"progress"`
	CompletedLeaves int `json:"completed_leaves"`
	TotalLeaves     int `json:"total_leaves"`
}

// ListSubjects handles GET /api/v1/subjects. Every subject is returned with
// the caller's leaf completion percentage.
func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var subjects []model.Subject
	if err := h.db.Order("sort_order ASC, id ASC").Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	overviews := make([]SubjectOverview, 0, len(subjects))
	for _, s := range subjects {
		completed, total, percent, err := h.treeService.SubjectProgress(c.Context(), s.ID, userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to compute progress")
		}
		overviews = append(overviews, SubjectOverview{
			Subject:         s,
			Progress:        percent,
			CompletedLeaves: completed,
			TotalLeaves:     total,
		})
	}

	return response.Success(c, overviews)
}

// GetSubject handles GET /api/v1/subjects/:id and returns the full nested
// tree annotated with the caller's completion marks.
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	subjectID, err := c.ParamsInt("id")
	if err != nil || subjectID < 1 {
		return response.BadRequest(c, "Invalid subject ID")
	}

	subjectTree, err := h.treeService.GetSubjectTree(c.Context(), uint(subjectID), userID)
	if err != nil {
		if errors.Is(err, tree.ErrSubjectNotFound) {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject tree")
	}

	return response.Success(c, subjectTree)
}

// CreateSubject handles POST /api/v1/subjects (admin only)
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	subject := model.Subject{
		Name:      validation.StripHTML(req.Name),
		Color:     validation.SanitizeString(req.Color),
		Icon:      validation.SanitizeString(req.Icon),
		SortOrder: req.SortOrder,
		CreatedBy: user.ID,
	}
	if err := h.db.Create(&subject).Error; err != nil {
		return response.InternalServerError(c, "Failed to create subject")
	}

	return response.Created(c, subject)
}

// UpdateSubject handles PUT /api/v1/subjects/:id (admin only)
func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	subjectID, err := c.ParamsInt("id")
	if err != nil || subjectID < 1 {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var req UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var subject model.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = validation.StripHTML(req.Name)
	}
	if req.Color != "" {
		updates["color"] = validation.SanitizeString(req.Color)
	}
	if req.Icon != "" {
		updates["icon"] = validation.SanitizeString(req.Icon)
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if len(updates) == 0 {
		return response.Success(c, subject)
	}

	if err := h.db.Model(&subject).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update subject")
	}

	h.treeService.InvalidateSubject(c.Context(), subject.ID)
	return response.Success(c, subject)
}

// DeleteSubject handles DELETE /api/v1/subjects/:id (admin only). The whole
// tree and everything attached to it goes with the subject.
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	subjectID, err := c.ParamsInt("id")
	if err != nil || subjectID < 1 {
		return response.BadRequest(c, "Invalid subject ID")
	}

	if err := h.treeService.DeleteSubject(c.Context(), uint(subjectID)); err != nil {
		if errors.Is(err, tree.ErrSubjectNotFound) {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to delete subject")
	}

	return response.SuccessWithMessage(c, "Subject deleted successfully", nil)
}
