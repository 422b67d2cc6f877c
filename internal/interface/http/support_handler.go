package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/application"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/response"
	"github.com/diaryfi/diaryfi-api/pkg/validation"
)

type SupportHandler struct {
	Service *application.SupportService
	Logger  *logrus.Logger
}

func NewSupportHandler(svc *application.SupportService, logger *logrus.Logger) *SupportHandler {
	return &SupportHandler{Service: svc, Logger: logger}
}

type supportRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Send POST /api/support (auth)
func (h *SupportHandler) Send(c *gin.Context) {
	var req supportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	if err := h.Service.Send(c.Request.Context(), c.GetString("userID"), req.Subject, req.Message); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "not found", nil)
			return
		}
		h.Logger.WithError(err).Error("support request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "your message has been sent, we respond within 24 hours", nil)
}
