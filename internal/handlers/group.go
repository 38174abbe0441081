package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

type GroupHandler struct {
	log *zap.Logger
}

func NewGroupHandler(log *zap.Logger) *GroupHandler {
	return &GroupHandler{log: log}
}

type groupRequest struct {
	CourseID  string   `json:"course_id" binding:"required"`
	TeacherID string   `json:"teacher_id"`
	Name      string   `json:"name" binding:"required"`
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	Capacity  int      `json:"capacity"`
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	group := &models.Group{
		CourseID:  req.CourseID,
		TeacherID: req.TeacherID,
		Name:      req.Name,
		Days:      req.Days,
		StartTime: req.StartTime,
		Capacity:  req.Capacity,
		IsActive:  true,
	}
	if group.Capacity == 0 {
		group.Capacity = 15
	}

	if err := repository.CreateGroup(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	groups, total, err := repository.ListGroups(c.Request.Context(), c.Query("course_id"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(groups, total, page, size))
}

func (h *GroupHandler) Get(c *gin.Context) {
	group, err := repository.GetGroupByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}
	delete(fields, "id")
	delete(fields, "created_at")
	delete(fields, "updated_at")

	if err := repository.UpdateGroup(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, err)
		return
	}

	group, err := repository.GetGroupByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) Delete(c *gin.Context) {
	if err := repository.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

type enrollRequest struct {
	StudentID   string `json:"student_id" binding:"required"`
	AgreedPrice string `json:"agreed_price"`
}

func (h *GroupHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}
	if req.AgreedPrice == "" {
		req.AgreedPrice = "0"
	}

	enrollment, err := repository.EnrollStudent(c.Request.Context(), c.Param("id"), req.StudentID, req.AgreedPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("student enrolled",
		zap.String("group_id", c.Param("id")),
		zap.String("student_id", req.StudentID),
	)
	c.JSON(http.StatusCreated, enrollment)
}

func (h *GroupHandler) Students(c *gin.Context) {
	enrollments, err := repository.GroupStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	type enrolledStudent struct {
		EnrollmentID string                  `json:"enrollment_id"`
		Status       models.EnrollmentStatus `json:"status"`
		Student      gin.H                   `json:"student"`
	}
	students := make([]enrolledStudent, 0, len(enrollments))
	for _, e := range enrollments {
		students = append(students, enrolledStudent{
			EnrollmentID: e.ID,
			Status:       e.Status,
			Student:      userResponse(&e.Student),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": students, "total": len(students)})
}
