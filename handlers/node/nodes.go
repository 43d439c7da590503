package node

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/services/tree"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
)

// NodeHandler handles curriculum node requests
type NodeHandler struct {
	validator   *validation.Validator
	treeService *tree.TreeService
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(treeService *tree.TreeService) *NodeHandler {
	return &NodeHandler{
		validator:   validation.NewValidator(),
		treeService: treeService,
	}
}

// CreateNodeRequest represents the request body for adding a node. A nil
// parent creates a root chapter.
type CreateNodeRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required,min=1"`
	ParentID  *uint  `json:"parent_id" validate:"omitempty,min=1"`
	Name      string `json:"name" validate:"required,min=1,max=255"`
	SortOrder int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// UpdateNodeRequest represents the request body for renaming a node
type UpdateNodeRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,gte=0"`
}

// ToggleProgressRequest represents the request body for a completion toggle
type ToggleProgressRequest struct {
	Completed bool `json:"completed"`
}

// CreateNode handles POST /api/v1/nodes (admin only)
func (h *NodeHandler) CreateNode(c *fiber.Ctx) error {
	var req CreateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	name := validation.StripHTML(req.Name)
	if name == "" {
		return response.BadRequest(c, "Name is required")
	}

	node, err := h.treeService.CreateNode(c.Context(), req.SubjectID, req.ParentID, name, req.SortOrder)
	if err != nil {
		switch {
		case errors.Is(err, tree.ErrSubjectNotFound):
			return response.NotFound(c, "Subject not found")
		case errors.Is(err, tree.ErrNodeNotFound):
			return response.NotFound(c, "Parent node not found")
		case errors.Is(err, tree.ErrMaxDepth):
			return response.BadRequest(c, "Subtopics cannot have children")
		case errors.Is(err, tree.ErrParentMismatch):
			return response.BadRequest(c, "Parent belongs to a different subject")
		}
		return response.InternalServerError(c, "Failed to create node")
	}

	return response.Created(c, node)
}

// UpdateNode handles PUT /api/v1/nodes/:id (admin only)
func (h *NodeHandler) UpdateNode(c *fiber.Ctx) error {
	nodeID, err := c.ParamsInt("id")
	if err != nil || nodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	var req UpdateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	name := validation.StripHTML(req.Name)
	if name == "" {
		return response.BadRequest(c, "Name is required")
	}

	node, err := h.treeService.RenameNode(c.Context(), uint(nodeID), name, req.SortOrder)
	if err != nil {
		if errors.Is(err, tree.ErrNodeNotFound) {
			return response.NotFound(c, "Node not found")
		}
		return response.InternalServerError(c, "Failed to update node")
	}

	return response.Success(c, node)
}

// DeleteNode handles DELETE /api/v1/nodes/:id (admin only). Descendants and
// everything attached to them are removed as well.
func (h *NodeHandler) DeleteNode(c *fiber.Ctx) error {
	nodeID, err := c.ParamsInt("id")
	if err != nil || nodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	if err := h.treeService.DeleteNode(c.Context(), uint(nodeID)); err != nil {
		if errors.Is(err, tree.ErrNodeNotFound) {
			return response.NotFound(c, "Node not found")
		}
		return response.InternalServerError(c, "Failed to delete node")
	}

	return response.SuccessWithMessage(c, "Node deleted successfully", nil)
}

// ToggleProgress handles PUT /api/v1/nodes/:id/progress (student only). The
// mark applies to the caller and this node alone.
func (h *NodeHandler) ToggleProgress(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	nodeID, err := c.ParamsInt("id")
	if err != nil || nodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	var req ToggleProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	progress, err := h.treeService.SetProgress(c.Context(), uint(nodeID), userID, req.Completed)
	if err != nil {
		if errors.Is(err, tree.ErrNodeNotFound) {
			return response.NotFound(c, "Node not found")
		}
		return response.InternalServerError(c, "Failed to update progress")
	}

	return response.Success(c, progress)
}
