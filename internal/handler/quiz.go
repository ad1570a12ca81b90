package handler

import (
	"study-pulse/internal/domain"
	"study-pulse/internal/dto"
	"study-pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz generation and session HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a note
// @Description Generates and normalizes a quiz for the given note title
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.GeneratedQuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quizzes/generate [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.GenerateQuiz(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CancelGeneration godoc
// @Summary Cancel in-flight quiz generation
// @Description Discards the result of any generation still in flight
// @Tags quiz
// @Produce json
// @Success 204
// @Router /quizzes/generate [delete]
func (h *QuizHandler) CancelGeneration(c *fiber.Ctx) error {
	h.service.CancelGeneration()
	return c.SendStatus(fiber.StatusNoContent)
}

// StartSession godoc
// @Summary Start a quiz session
// @Description Registers a new session over a generated quiz
// @Tags session
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Quiz to attempt"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *QuizHandler) StartSession(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.StartSession(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetSession godoc
// @Summary Get session state
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *QuizHandler) GetSession(c *fiber.Ctx) error {
	resp, err := h.service.GetSession(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RecordAnswer godoc
// @Summary Record an answer
// @Description Stores an answer for one question without advancing
// @Tags session
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.RecordAnswerRequest true "Answer"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/answers [put]
func (h *QuizHandler) RecordAnswer(c *fiber.Ctx) error {
	var req dto.RecordAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.RecordAnswer(c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Advance godoc
// @Summary Advance to the next question
// @Description Moves forward; advancing past the last question completes the session
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/advance [post]
func (h *QuizHandler) Advance(c *fiber.Ctx) error {
	resp, err := h.service.Advance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Retreat godoc
// @Summary Go back one question
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/retreat [post]
func (h *QuizHandler) Retreat(c *fiber.Ctx) error {
	resp, err := h.service.Retreat(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// JumpTo godoc
// @Summary Jump to a question
// @Tags session
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.JumpRequest true "Target index"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/jump [post]
func (h *QuizHandler) JumpTo(c *fiber.Ctx) error {
	var req dto.JumpRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.JumpTo(c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CancelSession godoc
// @Summary Cancel a session
// @Description Abandons the attempt and clears its recorded answers
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [delete]
func (h *QuizHandler) CancelSession(c *fiber.Ctx) error {
	if err := h.service.CancelSession(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Result godoc
// @Summary Get the result of a completed session
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResultResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/result [get]
func (h *QuizHandler) Result(c *fiber.Ctx) error {
	resp, err := h.service.Result(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
