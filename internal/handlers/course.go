package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

type CourseHandler struct {
	log *zap.Logger
}

func NewCourseHandler(log *zap.Logger) *CourseHandler {
	return &CourseHandler{log: log}
}

type courseRequest struct {
	Name                  string `json:"name" binding:"required"`
	Description           string `json:"description"`
	DurationMonths        int    `json:"duration_months"`
	LessonsPerWeek        int    `json:"lessons_per_week"`
	LessonDurationMinutes int    `json:"lesson_duration_minutes"`
	Price                 string `json:"price"`
	DiscountPrice         string `json:"discount_price"`
	Status                string `json:"status"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	course := &models.Course{
		Name:                  req.Name,
		Description:           req.Description,
		DurationMonths:        req.DurationMonths,
		LessonsPerWeek:        req.LessonsPerWeek,
		LessonDurationMinutes: req.LessonDurationMinutes,
		Price:                 req.Price,
		DiscountPrice:         req.DiscountPrice,
		Status:                models.CourseStatus(req.Status),
	}
	if course.DurationMonths == 0 {
		course.DurationMonths = 3
	}
	if course.LessonsPerWeek == 0 {
		course.LessonsPerWeek = 3
	}
	if course.LessonDurationMinutes == 0 {
		course.LessonDurationMinutes = 90
	}
	if course.Price == "" {
		course.Price = "0"
	}
	if course.Status == "" {
		course.Status = models.CoursePublished
	}

	if err := repository.CreateCourse(c.Request.Context(), course); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	staffView := CurrentUser(c).Role.IsStaff()

	courses, total, err := repository.ListCourses(c.Request.Context(), staffView, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(courses, total, page, size))
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := repository.GetCourseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !CurrentUser(c).Role.IsStaff() && course.Status != models.CoursePublished {
		respondError(c, repository.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}
	delete(fields, "id")
	delete(fields, "created_at")
	delete(fields, "updated_at")

	if err := repository.UpdateCourse(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, err)
		return
	}

	course, err := repository.GetCourseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	if err := repository.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}
