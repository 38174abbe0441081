package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

type LessonHandler struct {
	log *zap.Logger
}

func NewLessonHandler(log *zap.Logger) *LessonHandler {
	return &LessonHandler{log: log}
}

type lessonRequest struct {
	GroupID      string  `json:"group_id" binding:"required"`
	LessonNumber int     `json:"lesson_number"`
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Date         string  `json:"date" binding:"required"` // YYYY-MM-DD
	StartTime    string  `json:"start_time" binding:"required"`
	EndTime      string  `json:"end_time" binding:"required"`
	Homework     string  `json:"homework"`
	TeacherID    *string `json:"teacher_id"`
}

func (h *LessonHandler) Create(c *gin.Context) {
	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "date must be YYYY-MM-DD"))
		return
	}
	for _, hhmm := range []string{req.StartTime, req.EndTime} {
		if _, err := time.Parse("15:04", hhmm); err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "times must be HH:MM"))
			return
		}
	}

	lesson := &models.Lesson{
		GroupID:      req.GroupID,
		LessonNumber: req.LessonNumber,
		Title:        req.Title,
		Description:  req.Description,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       models.LessonScheduled,
		Homework:     req.Homework,
		TeacherID:    req.TeacherID,
	}
	if err := repository.CreateLesson(c.Request.Context(), lesson); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *LessonHandler) List(c *gin.Context) {
	page, size := pageParams(c)

	var from, until *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("until"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			until = &t
		}
	}

	lessons, total, err := repository.ListLessons(c.Request.Context(), c.Query("group_id"), from, until, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(lessons, total, page, size))
}

func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := repository.GetLessonByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}
	delete(fields, "id")
	delete(fields, "created_at")
	delete(fields, "updated_at")

	if err := repository.UpdateLesson(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, err)
		return
	}

	lesson, err := repository.GetLessonByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) Delete(c *gin.Context) {
	if err := repository.DeleteLesson(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}

// Schedule returns the caller's upcoming lessons across all groups they
// are enrolled in.
func (h *LessonHandler) Schedule(c *gin.Context) {
	lessons, err := repository.UpcomingLessonsForStudent(c.Request.Context(), CurrentUser(c).ID, 20)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lessons, "total": len(lessons)})
}
