package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/application"
	"github.com/diaryfi/diaryfi-api/pkg/response"
	"github.com/diaryfi/diaryfi-api/pkg/validation"
)

type PurchaseHandler struct {
	Service *application.PurchaseService
	Logger  *logrus.Logger
}

func NewPurchaseHandler(svc *application.PurchaseService, logger *logrus.Logger) *PurchaseHandler {
	return &PurchaseHandler{Service: svc, Logger: logger}
}

type verifyPurchaseRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Platform  string `json:"platform" binding:"required,oneof=android ios"`
	Receipt   string `json:"receipt" binding:"required"`
}

// Verify POST /api/purchases/verify (auth)
func (h *PurchaseHandler) Verify(c *gin.Context) {
	var req verifyPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	u, err := h.Service.Verify(c.Request.Context(), c.GetString("userID"), req.ProductID, req.Platform, req.Receipt)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUnknownProduct),
			errors.Is(err, application.ErrUnknownPlatform),
			errors.Is(err, application.ErrEmptyReceipt):
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		default:
			h.Logger.WithError(err).Error("purchase verification failed")
			response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "purchase verified", nil)
}
