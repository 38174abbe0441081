package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/auth"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/config"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/utils"
)

type AuthHandler struct {
	log *zap.Logger
}

func NewAuthHandler(log *zap.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

type registerRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
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
	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "Invalid email"))
		return
	}

	user := &models.User{
		Phone:     req.Phone,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleStudent,
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password, config.Conf.Auth.BcryptRounds); err != nil {
		respondError(c, err)
		return
	}

	if err := repository.CreateUser(c.Request.Context(), user); err != nil {
		h.log.Warn("registration failed", zap.String("phone", req.Phone), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userResponse(user))
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	user, err := repository.GetUserByPhone(c.Request.Context(), req.Phone)
	if err != nil || !user.CheckPassword(req.Password) || !user.IsActive {
		c.JSON(http.StatusUnauthorized, ErrorBody("AUTHENTICATION_FAILED", "Invalid phone or password"))
		return
	}

	ttl := time.Duration(config.Conf.Auth.TokenTTLHrs) * time.Hour
	token, err := auth.GenerateToken(user, config.Conf.Auth.JWTSecret, ttl)
	if err != nil {
		h.log.Error("token generation failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         userResponse(user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, userResponse(CurrentUser(c)))
}
