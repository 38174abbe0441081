package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

type PaymentHandler struct {
	log *zap.Logger
}

func NewPaymentHandler(log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{log: log}
}

type paymentRequest struct {
	UserID       string  `json:"user_id" binding:"required"`
	EnrollmentID *string `json:"enrollment_id"`
	Amount       string  `json:"amount" binding:"required"`
	Method       string  `json:"method" binding:"required"`
	Description  string  `json:"description"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	payment := &models.Payment{
		UserID:       req.UserID,
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount,
		Currency:     "UZS",
		Method:       models.PaymentMethod(req.Method),
		Status:       models.PaymentPending,
		Description:  req.Description,
	}
	if err := repository.CreatePayment(c.Request.Context(), payment); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("user_id", payment.UserID),
		zap.String("amount", payment.Amount),
	)
	c.JSON(http.StatusCreated, payment)
}

// List shows staff every payment; learners only their own.
func (h *PaymentHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	user := CurrentUser(c)

	userID := c.Query("user_id")
	if !user.Role.IsStaff() {
		userID = user.ID
	}

	payments, total, err := repository.ListPayments(c.Request.Context(), userID,
		models.PaymentStatus(c.Query("status")), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(payments, total, page, size))
}

func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := repository.GetPaymentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	user := CurrentUser(c)
	if !user.Role.IsStaff() && payment.UserID != user.ID {
		respondError(c, repository.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, payment)
}

type paymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a payment through its lifecycle. Completing a
// payment rolls its amount into the linked enrollment's paid total.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	if err := repository.UpdatePaymentStatus(c.Request.Context(), c.Param("id"),
		models.PaymentStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	payment, err := repository.GetPaymentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
