package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/application"
	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/response"
	"github.com/diaryfi/diaryfi-api/pkg/validation"
)

type JournalHandler struct {
	Service *application.JournalService
	Logger  *logrus.Logger
}

func NewJournalHandler(svc *application.JournalService, logger *logrus.Logger) *JournalHandler {
	return &JournalHandler{Service: svc, Logger: logger}
}

func (h *JournalHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrJournalLimit):
		response.Error[any](c, http.StatusForbidden, application.ErrJournalLimit.Error(), nil)
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "journal not found", nil)
	default:
		h.Logger.WithError(err).Error("journal request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

type journalRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	Icon        string `json:"icon" binding:"max=50"`
}

// Create POST /api/journals
func (h *JournalHandler) Create(c *gin.Context) {
	var req journalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	j, err := h.Service.Create(c.Request.Context(), c.GetString("userID"), &entity.Journal{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toJournalView(j), "journal created", nil)
}

// List GET /api/journals
func (h *JournalHandler) List(c *gin.Context) {
	js, err := h.Service.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toJournalViews(js), "", nil)
}

// Get GET /api/journals/:id
func (h *JournalHandler) Get(c *gin.Context) {
	j, err := h.Service.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toJournalView(j), "", nil)
}

type journalUpdateRequest struct {
	Name        string `json:"name" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	Icon        string `json:"icon" binding:"max=50"`
}

// Update PUT /api/journals/:id
func (h *JournalHandler) Update(c *gin.Context) {
	var req journalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	j, err := h.Service.Update(c.Request.Context(), c.GetString("userID"), &entity.Journal{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toJournalView(j), "journal updated", nil)
}

// Delete DELETE /api/journals/:id
// The journal's entries survive with their journal reference cleared.
func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "journal deleted", nil)
}
