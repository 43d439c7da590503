package test

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/services/tests"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
)

// SaveAnswerRequest represents the request body for recording one answer
type SaveAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,min=1"`
	Option     string `json:"option" validate:"required,oneof=a b c d"`
}

func attemptError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, tests.ErrTestNotFound):
		return response.NotFound(c, "Test not found")
	case errors.Is(err, tests.ErrAttemptNotStarted):
		return response.BadRequest(c, "Attempt has not been started")
	case errors.Is(err, tests.ErrAlreadySubmitted):
		return response.Conflict(c, "Attempt has already been submitted")
	case errors.Is(err, tests.ErrQuestionNotInTest):
		return response.BadRequest(c, "Question does not belong to this test")
	case errors.Is(err, tests.ErrInvalidOption):
		return response.BadRequest(c, "Option must be one of a, b, c, d")
	}
	return response.InternalServerError(c, "Failed to process attempt")
}

// GetAttempt handles GET /api/v1/tests/:id/attempt (student only). A reload
// lands here and gets the surviving state back, never a fresh countdown.
func (h *TestHandler) GetAttempt(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	attempt, err := h.testService.GetAttempt(c.Context(), uint(testID), userID)
	if err != nil {
		return attemptError(c, err)
	}

	return response.Success(c, attempt)
}

// StartAttempt handles POST /api/v1/tests/:id/start (student only)
func (h *TestHandler) StartAttempt(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	attempt, err := h.testService.StartAttempt(c.Context(), uint(testID), userID)
	if err != nil {
		return attemptError(c, err)
	}

	return response.Success(c, attempt)
}

// SaveAnswer handles POST /api/v1/tests/:id/answer (student only)
func (h *TestHandler) SaveAnswer(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	var req SaveAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	attempt, err := h.testService.SaveAnswer(c.Context(), uint(testID), userID, req.QuestionID, req.Option)
	if err != nil {
		return attemptError(c, err)
	}

	return response.Success(c, attempt)
}

// SubmitAttempt handles POST /api/v1/tests/:id/submit (student only).
// Submitting again returns the original result; the clientside timer expiry
// calls this same endpoint.
func (h *TestHandler) SubmitAttempt(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	testID, err := c.ParamsInt("id")
	if err != nil || testID < 1 {
		return response.BadRequest(c, "Invalid test ID")
	}

	attempt, err := h.testService.Submit(c.Context(), uint(testID), userID)
	if err != nil {
		return attemptError(c, err)
	}

	return response.Success(c, attempt)
}
