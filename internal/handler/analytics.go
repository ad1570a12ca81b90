package handler

import (
	"study-pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler handles performance analytics HTTP requests
type AnalyticsHandler struct {
	service service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler instance
func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// GetAnalytics godoc
// @Summary Get aggregated performance analytics
// @Description Aggregates attempt history for an optional course and time window
// @Tags analytics
// @Produce json
// @Param course query string false "Course title filter"
// @Param window query string false "Time window (7d, 30d, 90d, all)"
// @Param page query int false "Recent attempts page"
// @Param per_page query int false "Recent attempts page size"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	resp, err := h.service.GetAnalytics(
		c.UserContext(),
		c.Query("course"),
		c.Query("window"),
		c.QueryInt("page", 1),
		c.QueryInt("per_page", 0),
	)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListCourses godoc
// @Summary List courses with attempt history
// @Description Per-course attempt count, average and latest score
// @Tags analytics
// @Produce json
// @Param search query string false "Case-insensitive title search"
// @Success 200 {object} dto.CourseListResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /analytics/courses [get]
func (h *AnalyticsHandler) ListCourses(c *fiber.Ctx) error {
	resp, err := h.service.ListCourses(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListNotes godoc
// @Summary List stored note titles
// @Tags notes
// @Produce json
// @Success 200 {array} dto.NoteResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /notes [get]
func (h *AnalyticsHandler) ListNotes(c *fiber.Ctx) error {
	resp, err := h.service.ListNotes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
