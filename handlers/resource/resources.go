package resource

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/services/storage"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/pdfvalidation"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
	"github.com/sreevasthav1710/study10/utils/youtube"
	"gorm.io/gorm"
)

// ResourceHandler handles chapter resource requests
type ResourceHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	spaces    *storage.SpacesClient
}

// NewResourceHandler creates a new resource handler. The storage client may
// be nil; file uploads are then rejected while link resources still work.
func NewResourceHandler(db *gorm.DB, spaces *storage.SpacesClient) *ResourceHandler {
	return &ResourceHandler{
		db:        db,
		validator: validation.NewValidator(),
		spaces:    spaces,
	}
}

// CreateResourceRequest represents the request body for a link-based resource
type CreateResourceRequest struct {
	ChapterNodeID uint   `json:"chapter_node_id" validate:"required,min=1"`
	Name          string `json:"name" validate:"required,min=1,max=255"`
	ResourceType  string `json:"resource_type" validate:"required,oneof=note pdf word mp4 youtube"`
	URL           string `json:"url" validate:"required,url"`
	SortOrder     int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// UpdateResourceRequest represents the request body for updating a resource
type UpdateResourceRequest struct {
	Name      string `json:"name" validate:"omitempty,min=1,max=255"`
	URL       string `json:"url" validate:"omitempty,url"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,gte=0"`
}

func (h *ResourceHandler) chapterExists(id uint) (bool, error) {
	var node model.StudyNode
	if err := h.db.First(&node, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByChapter handles GET /api/v1/nodes/:id/resources
func (h *ResourceHandler) ListByChapter(c *fiber.Ctx) error {
	nodeID, err := c.ParamsInt("id")
	if err != nil || nodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	var resources []model.Resource
	if err := h.db.Where("chapter_node_id = ?", nodeID).
		Order("sort_order ASC, id ASC").
		Find(&resources).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch resources")
	}

	return response.Success(c, resources)
}

// Create handles POST /api/v1/resources (admin only) for link-based
// resources. YouTube links are normalized to their embeddable form.
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	exists, err := h.chapterExists(req.ChapterNodeID)
	if err != nil {
		return response.InternalServerError(c, "Failed to verify chapter")
	}
	if !exists {
		return response.NotFound(c, "Chapter node not found")
	}

	resourceType := model.ResourceType(req.ResourceType)
	url := strings.TrimSpace(req.URL)
	if resourceType == model.ResourceTypeYouTube {
		url = youtube.EmbedURL(url)
	}

	resource := model.Resource{
		ChapterNodeID: req.ChapterNodeID,
		Name:          validation.StripHTML(req.Name),
		ResourceType:  resourceType,
		URL:           url,
		SortOrder:     req.SortOrder,
		CreatedBy:     user.ID,
	}
	if err := h.db.Create(&resource).Error; err != nil {
		return response.InternalServerError(c, "Failed to create resource")
	}

	return response.Created(c, resource)
}

// Upload handles POST /api/v1/nodes/:id/resources/upload (admin only): a multipart
// file pushed to object storage, PDF files validated first.
func (h *ResourceHandler) Upload(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	if h.spaces == nil {
		return response.Error(c, fiber.StatusServiceUnavailable,
			"File storage is not configured", "STORAGE_UNAVAILABLE")
	}

	chapterNodeID, err := c.ParamsInt("id")
	if err != nil || chapterNodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	exists, err := h.chapterExists(uint(chapterNodeID))
	if err != nil {
		return response.InternalServerError(c, "Failed to verify chapter")
	}
	if !exists {
		return response.NotFound(c, "Chapter node not found")
	}

	name := validation.StripHTML(c.FormValue("name"))
	if name == "" {
		return response.BadRequest(c, "Name is required")
	}

	resourceType := model.ResourceType(c.FormValue("resource_type"))
	switch resourceType {
	case model.ResourceTypePDF, model.ResourceTypeWord, model.ResourceTypeMP4:
	default:
		return response.BadRequest(c, "Only pdf, word and mp4 resources can be uploaded")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	if resourceType == model.ResourceTypePDF {
		result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.ResourceLimits)
		if err != nil {
			return response.InternalServerError(c, "Failed to validate PDF")
		}
		if !result.Valid {
			return response.BadRequest(c, result.Error)
		}
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	key := storage.ResourceKey(uint(chapterNodeID), file.Filename)
	url, err := h.spaces.UploadBytes(c.Context(), key, content, contentTypeFor(resourceType, file.Filename))
	if err != nil {
		return response.InternalServerError(c, "Failed to upload file")
	}

	resource := model.Resource{
		ChapterNodeID: uint(chapterNodeID),
		Name:          name,
		ResourceType:  resourceType,
		URL:           url,
		CreatedBy:     user.ID,
	}
	if err := h.db.Create(&resource).Error; err != nil {
		return response.InternalServerError(c, "Failed to create resource")
	}

	return response.Created(c, resource)
}

func contentTypeFor(t model.ResourceType, filename string) string {
	switch t {
	case model.ResourceTypePDF:
		return "application/pdf"
	case model.ResourceTypeMP4:
		return "video/mp4"
	case model.ResourceTypeWord:
		if strings.HasSuffix(strings.ToLower(filepath.Ext(filename)), "docx") {
			return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		}
		return "application/msword"
	}
	return "application/octet-stream"
}

// Update handles PUT /api/v1/resources/:id (admin only)
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	resourceID, err := c.ParamsInt("id")
	if err != nil || resourceID < 1 {
		return response.BadRequest(c, "Invalid resource ID")
	}

	var req UpdateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var resource model.Resource
	if err := h.db.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		return response.InternalServerError(c, "Failed to fetch resource")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = validation.StripHTML(req.Name)
	}
	if req.URL != "" {
		url := strings.TrimSpace(req.URL)
		if resource.ResourceType == model.ResourceTypeYouTube {
			url = youtube.EmbedURL(url)
		}
		updates["url"] = url
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if len(updates) == 0 {
		return response.Success(c, resource)
	}

	if err := h.db.Model(&resource).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update resource")
	}

	return response.Success(c, resource)
}

// Delete handles DELETE /api/v1/resources/:id (admin only). Files this API
// uploaded are also removed from object storage, best effort.
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	resourceID, err := c.ParamsInt("id")
	if err != nil || resourceID < 1 {
		return response.BadRequest(c, "Invalid resource ID")
	}

	var resource model.Resource
	if err := h.db.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		return response.InternalServerError(c, "Failed to fetch resource")
	}

	if err := h.db.Delete(&resource).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete resource")
	}

	if h.spaces != nil {
		if key, ok := h.spaces.KeyFromURL(resource.URL); ok {
			_ = h.spaces.DeleteFile(c.Context(), key)
		}
	}

	return response.SuccessWithMessage(c, "Resource deleted successfully", nil)
}
