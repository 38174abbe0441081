package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/config"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/utils"
)

type UserHandler struct {
	log *zap.Logger
}

func NewUserHandler(log *zap.Logger) *UserHandler {
	return &UserHandler{log: log}
}

// userResponse strips credentials and internal fields.
func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"phone":       user.Phone,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"middle_name": user.MiddleName,
		"role":        user.Role,
		"is_active":   user.IsActive,
		"is_verified": user.IsVerified,
		"created_at":  user.CreatedAt,
	}
}

type createUserRequest struct {
	Phone      string `json:"phone" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	MiddleName string `json:"middle_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// Create lets staff register accounts directly, e.g. enrolling a walk-in
// student or onboarding a teacher. Elevated roles require an admin.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	if !utils.IsValidPhone(req.Phone) {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "Phone must match +998XXXXXXXXX"))
		return
	}
	if !utils.IsComplexPassword(req.Password) {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR",
			"Password must be at least 8 characters with upper, lower, digit and special characters"))
		return
	}

	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && !CurrentUser(c).Role.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorBody("FORBIDDEN", "Admin role required to create staff accounts"))
		return
	}

	user := &models.User{
		Phone:      req.Phone,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Role:       role,
		IsActive:   true,
		IsVerified: true,
	}
	if err := user.SetPassword(req.Password, config.Conf.Auth.BcryptRounds); err != nil {
		respondError(c, err)
		return
	}

	if err := repository.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("user created by staff",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("created_by", CurrentUser(c).ID),
	)
	c.JSON(http.StatusCreated, userResponse(user))
}

func (h *UserHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	role := models.Role(c.Query("role"))

	users, total, err := repository.ListUsers(c.Request.Context(), role, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, paginated(items, total, page, size))
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := repository.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

type userUpdateRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	IsActive   *bool   `json:"is_active"`
}

func (h *UserHandler) Update(c *gin.Context) {
	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	fields := make(map[string]interface{})
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.MiddleName != nil {
		fields["middle_name"] = *req.MiddleName
	}
	if req.Email != nil {
		if *req.Email != "" && !utils.IsValidEmail(*req.Email) {
			c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "Invalid email"))
			return
		}
		fields["email"] = *req.Email
	}
	if req.Role != nil {
		// Only admins may grant roles.
		if !CurrentUser(c).Role.IsAdmin() {
			c.JSON(http.StatusForbidden, ErrorBody("FORBIDDEN", "Admin role required to change roles"))
			return
		}
		fields["role"] = *req.Role
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "Nothing to update"))
		return
	}

	if err := repository.UpdateUser(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, err)
		return
	}

	user, err := repository.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := repository.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("user deleted", zap.String("user_id", c.Param("id")))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
