package doubt

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/services/doubts"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
	"gorm.io/gorm"
)

// DoubtHandler handles doubt thread requests
type DoubtHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	doubtService *doubts.DoubtService
}

// NewDoubtHandler creates a new doubt handler
func NewDoubtHandler(db *gorm.DB, doubtService *doubts.DoubtService) *DoubtHandler {
	return &DoubtHandler{
		db:           db,
		validator:    validation.NewValidator(),
		doubtService: doubtService,
	}
}

// CreateDoubtRequest represents the request body for raising a doubt
type CreateDoubtRequest struct {
	ChapterNodeID uint   `json:"chapter_node_id" validate:"required,min=1"`
	Message       string `json:"message" validate:"required,min=1,max=5000"`
}

// ReplyRequest represents the request body for replying to a doubt
type ReplyRequest struct {
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// Create handles POST /api/v1/doubts (student only)
func (h *DoubtHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateDoubtRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	message := validation.StripHTML(req.Message)
	if message == "" {
		return response.BadRequest(c, "Message is required")
	}

	doubt, err := h.doubtService.Create(c.Context(), req.ChapterNodeID, userID, message)
	if err != nil {
		if errors.Is(err, doubts.ErrNodeNotFound) {
			return response.NotFound(c, "Chapter node not found")
		}
		return response.InternalServerError(c, "Failed to create doubt")
	}

	return response.Created(c, doubt)
}

// ListMine handles GET /api/v1/doubts (student only), optionally filtered by
// chapter via ?chapter_node_id=.
func (h *DoubtHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var chapterNodeID *uint
	if raw := c.QueryInt("chapter_node_id", 0); raw > 0 {
		id := uint(raw)
		chapterNodeID = &id
	}

	list, err := h.doubtService.ListForStudent(c.Context(), userID, chapterNodeID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch doubts")
	}

	return response.Success(c, list)
}

// ListAll handles GET /api/v1/admin/doubts (admin only), optionally filtered
// by ?status=pending|replied|resolved.
func (h *DoubtHandler) ListAll(c *fiber.Ctx) error {
	var status *model.DoubtStatus
	if raw := c.Query("status"); raw != "" {
		s := model.DoubtStatus(raw)
		if !model.ValidDoubtStatus(s) {
			return response.BadRequest(c, "Invalid status filter")
		}
		status = &s
	}

	list, err := h.doubtService.ListAll(c.Context(), status)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch doubts")
	}

	return response.Success(c, list)
}

// Get handles GET /api/v1/doubts/:id. Students can only open their own
// threads; admins can open any.
func (h *DoubtHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	doubtID, err := c.ParamsInt("id")
	if err != nil || doubtID < 1 {
		return response.BadRequest(c, "Invalid doubt ID")
	}

	doubt, err := h.doubtService.Get(c.Context(), uint(doubtID))
	if err != nil {
		if errors.Is(err, doubts.ErrDoubtNotFound) {
			return response.NotFound(c, "Doubt not found")
		}
		return response.InternalServerError(c, "Failed to fetch doubt")
	}

	if role != "admin" && doubt.StudentID != userID {
		return response.Forbidden(c, "")
	}

	return response.Success(c, doubt)
}

// Reply handles POST /api/v1/doubts/:id/replies. Students may add to their
// own threads; admins to any. Either way the doubt goes to replied.
func (h *DoubtHandler) Reply(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	doubtID, err := c.ParamsInt("id")
	if err != nil || doubtID < 1 {
		return response.BadRequest(c, "Invalid doubt ID")
	}

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	message := validation.StripHTML(req.Message)
	if message == "" {
		return response.BadRequest(c, "Message is required")
	}

	if role != "admin" {
		doubt, err := h.doubtService.Get(c.Context(), uint(doubtID))
		if err != nil {
			if errors.Is(err, doubts.ErrDoubtNotFound) {
				return response.NotFound(c, "Doubt not found")
			}
			return response.InternalServerError(c, "Failed to fetch doubt")
		}
		if doubt.StudentID != userID {
			return response.Forbidden(c, "")
		}
	}

	reply, err := h.doubtService.Reply(c.Context(), uint(doubtID), userID, message)
	if err != nil {
		if errors.Is(err, doubts.ErrDoubtNotFound) {
			return response.NotFound(c, "Doubt not found")
		}
		return response.InternalServerError(c, "Failed to add reply")
	}

	return response.Created(c, reply)
}

// Resolve handles PUT /api/v1/doubts/:id/resolve (admin only)
func (h *DoubtHandler) Resolve(c *fiber.Ctx) error {
	doubtID, err := c.ParamsInt("id")
	if err != nil || doubtID < 1 {
		return response.BadRequest(c, "Invalid doubt ID")
	}

	doubt, err := h.doubtService.Resolve(c.Context(), uint(doubtID))
	if err != nil {
		if errors.Is(err, doubts.ErrDoubtNotFound) {
			return response.NotFound(c, "Doubt not found")
		}
		return response.InternalServerError(c, "Failed to resolve doubt")
	}

	return response.Success(c, doubt)
}
