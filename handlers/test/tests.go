package test

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/services/tests"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
	"gorm.io/gorm"
)

// TestHandler handles MCQ test requests
type TestHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	testService *tests.TestService
}

// NewTestHandler creates a new test handler
func NewTestHandler(db *gorm.DB, testService *tests.TestService) *TestHandler {
	return &TestHandler{
		db:          db,
		validator:   validation.NewValidator(),
		testService: testService,
	}
}

// QuestionInput is one question in a create request
type QuestionInput struct {
	QuestionText  string `json:"question_text" validate:"required,min=1"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c" validate:"required"`
	OptionD       string `json:"option_d" validate:"required"`
	CorrectOption string `json:"correct_option" validate:"required,oneof=a b c d"`
	SortOrder     int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// CreateTestRequest represents the request body for creating a test
type CreateTestRequest struct {
	ChapterNodeID uint            `json:"chapter_node_id" validate:"required,min=1"`
	Title         string          `json:"title" validate:"required,min=1,max=255"`
	TimerMinutes  int             `json:"timer_minutes" validate:"omitempty,min=1,max=600"`
	Deadline      *time.Time      `json:"deadline"`
	Questions     []QuestionInput `json:"questions" validate:"omitempty,dive"`
}

// UpdateTestRequest represents the request body for updating a test
type UpdateTestRequest struct {
	Title        string     `json:"title" validate:"omitempty,min=1,max=255"`
	TimerMinutes *int       `json:"timer_minutes" validate:"omitempty,min=1,max=600"`
	Deadline     *time.Time `json:"deadline"`
}

// QuestionView is a question as shown to the client. The correct option is
// present only for admins or after the caller has submitted.
type QuestionView struct {
	ID            uint   `json:"id"`
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	SortOrder     int    `json:"sort_order"`
	CorrectOption string `json:"correct_option,omitempty"`
}

// TestView is a test with its questions rendered for the caller.
type TestView struct {
	ID            uint           `json:"id"`
	ChapterNodeID uint           `json:"chapter_node_id"`
	Title         string         `json:"title"`
	TimerMinutes  int            `json:"timer_minutes"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	QuestionCount int            `json:"question_count"`
	Questions     []QuestionView `json:"questions,omitempty"`
}

func questionViews(questions []model.TestQuestion, revealAnswers bool) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
			SortOrder:    q.SortOrder,
		}
		if revealAnswers {
			view.CorrectOption = q.CorrectOption
		}
		views = append(views, view)
	}
	return views
}

// ListByChapter handles GET /api/v1/nodes/:id/tests
func (h *TestHandler) ListByChapter(c *fiber.Ctx) error {
	nodeID, err := c.ParamsInt("id")
	if err != nil || nodeID < 1 {
		return response.BadRequest(c, "Invalid node ID")
	}

	var testRows []model.Test
	if err := h.db.Preload("Questions").
		Where("chapter_node_id = ?", nodeID).
		Order("created_at ASC").
		Find(&testRows).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch tests")
	}

	views := make([]TestView, 0, len(testRows))
	for _, t := range testRows {
		views = append(views, TestView{
			ID:            t.ID,
			ChapterNodeID: t.ChapterNodeID,
			Title:         t.Title,
			TimerMinutes:  t.TimerMinutes,
			Deadline:      t.Deadline,
			QuestionCount: len(t.Questions),
		})
	}

	return response.Success(c, views)
}

// GetTest handles GET /api/v1/tests/:id. Correct options stay hidden from a
// student until their attempt is submitted.
func (h *TestHandler) GetTest(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	var test model.Test
	if err := h.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		return response.InternalServerError(c, "Failed to fetch test")
	}

	reveal := role == "admin"
	if !reveal {
		attempt, err := h.testService.GetAttempt(c.Context(), test.ID, userID)
		if err == nil && attempt.State == tests.StateSubmitted {
			reveal = true
		}
	}

	view := TestView{
		ID:            test.ID,
		ChapterNodeID: test.ChapterNodeID,
		Title:         test.Title,
		TimerMinutes:  test.TimerMinutes,
		Deadline:      test.Deadline,
		QuestionCount: len(test.Questions),
		Questions:     questionViews(test.Questions, reveal),
	}

	return response.Success(c, view)
}

// Create handles POST /api/v1/tests (admin only)
func (h *TestHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateTestRequest
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

	timer := req.TimerMinutes
	if timer == 0 {
		timer = 10
	}

	test := model.Test{
		ChapterNodeID: req.ChapterNodeID,
		Title:         validation.StripHTML(req.Title),
		TimerMinutes:  timer,
		Deadline:      req.Deadline,
		CreatedBy:     user.ID,
	}
	for i, q := range req.Questions {
		test.Questions = append(test.Questions, model.TestQuestion{
			QuestionText:  validation.StripHTML(q.QuestionText),
			OptionA:       validation.SanitizeString(q.OptionA),
			OptionB:       validation.SanitizeString(q.OptionB),
			OptionC:       validation.SanitizeString(q.OptionC),
			OptionD:       validation.SanitizeString(q.OptionD),
			CorrectOption: strings.ToLower(q.CorrectOption),
			SortOrder:     orDefault(q.SortOrder, i),
		})
	}

	if err := h.db.Create(&test).Error; err != nil {
		return response.InternalServerError(c, "Failed to create test")
	}

	return response.Created(c, test)
}

func orDefault(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

// Update handles PUT /api/v1/tests/:id (admin only)
func (h *TestHandler) Update(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	var req UpdateTestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var test model.Test
	if err := h.db.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		return response.InternalServerError(c, "Failed to fetch test")
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = validation.StripHTML(req.Title)
	}
	if req.TimerMinutes != nil {
		updates["timer_minutes"] = *req.TimerMinutes
	}
	if req.Deadline != nil {
		updates["deadline"] = req.Deadline
	}
	if len(updates) == 0 {
		return response.Success(c, test)
	}

	if err := h.db.Model(&test).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update test")
	}

	return response.Success(c, test)
}

// Delete handles DELETE /api/v1/tests/:id (admin only)
func (h *TestHandler) Delete(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	var test model.Test
	if err := h.db.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		return response.InternalServerError(c, "Failed to fetch test")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", test.ID).Delete(&model.TestQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", test.ID).Delete(&model.TestSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&test).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete test")
	}

	return response.SuccessWithMessage(c, "Test deleted successfully", nil)
}

// AddQuestion handles POST /api/v1/tests/:id/questions (admin only)
func (h *TestHandler) AddQuestion(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	var req QuestionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var test model.Test
	if err := h.db.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		return response.InternalServerError(c, "Failed to fetch test")
	}

	question := model.TestQuestion{
		TestID:        test.ID,
		QuestionText:  validation.StripHTML(req.QuestionText),
		OptionA:       validation.SanitizeString(req.OptionA),
		OptionB:       validation.SanitizeString(req.OptionB),
		OptionC:       validation.SanitizeString(req.OptionC),
		OptionD:       validation.SanitizeString(req.OptionD),
		CorrectOption: strings.ToLower(req.CorrectOption),
		SortOrder:     req.SortOrder,
	}
	if err := h.db.Create(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to create question")
	}

	return response.Created(c, question)
}

// UpdateQuestion handles PUT /api/v1/questions/:id (admin only)
func (h *TestHandler) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := c.ParamsInt("id")
	if err != nil || questionID < 1 {
		return response.BadRequest(c, "Invalid question ID")
	}

	var req QuestionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var question model.TestQuestion
	if err := h.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	updates := map[string]interface{}{
		"question_text":  validation.StripHTML(req.QuestionText),
		"option_a":       validation.SanitizeString(req.OptionA),
		"option_b":       validation.SanitizeString(req.OptionB),
		"option_c":       validation.SanitizeString(req.OptionC),
		"option_d":       validation.SanitizeString(req.OptionD),
		"correct_option": strings.ToLower(req.CorrectOption),
		"sort_order":     req.SortOrder,
	}
	if err := h.db.Model(&question).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update question")
	}

	return response.Success(c, question)
}

// DeleteQuestion handles DELETE /api/v1/questions/:id (admin only)
func (h *TestHandler) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := c.ParamsInt("id")
	if err != nil || questionID < 1 {
		return response.BadRequest(c, "Invalid question ID")
	}

	var question model.TestQuestion
	if err := h.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	if err := h.db.Delete(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete question")
	}

	return response.SuccessWithMessage(c, "Question deleted successfully", nil)
}

// ListSubmissions handles GET /api/v1/tests/:id/submissions (admin only)
func (h *TestHandler) ListSubmissions(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	var submissions []model.TestSubmission
	if err := h.db.Where("test_id = ?", testID).
		Order("started_at DESC").
		Find(&submissions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch submissions")
	}

	return response.Success(c, submissions)
}
