package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/application"
	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/response"
	"github.com/diaryfi/diaryfi-api/pkg/validation"
)

type EntryHandler struct {
	Service *application.EntryService
	Logger  *logrus.Logger
}

func NewEntryHandler(svc *application.EntryService, logger *logrus.Logger) *EntryHandler {
	return &EntryHandler{Service: svc, Logger: logger}
}

func (h *EntryHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrUnsupportedMedia):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCoordinates):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrMediaNotFound):
		response.Error[any](c, http.StatusNotFound, application.ErrMediaNotFound.Error(), nil)
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		h.Logger.WithError(err).Error("entry request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// entryForm is the multipart body shared by create and update; media files
// arrive under the "media" field.
type entryForm struct {
	JournalID   string `form:"journal_id" binding:"omitempty,uuid"`
	Title       string `form:"title" binding:"max=200"`
	Description string `form:"description"`
	FormatSpans string `form:"format_spans" binding:"omitempty,json"`
	Location    string `form:"location" binding:"omitempty,json"`
	CreatedAt   string `form:"created_at"` // RFC3339; backdated entries are allowed
}

func (f *entryForm) spans() ([]entity.FormatSpan, error) {
	if f.FormatSpans == "" {
		return nil, nil
	}
	var spans []entity.FormatSpan
	if err := json.Unmarshal([]byte(f.FormatSpans), &spans); err != nil {
		return nil, err
	}
	return spans, nil
}

func (f *entryForm) location() (*entity.Location, error) {
	if f.Location == "" {
		return nil, nil
	}
	loc := &entity.Location{}
	if err := json.Unmarshal([]byte(f.Location), loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (f *entryForm) createdAt() (time.Time, error) {
	if f.CreatedAt == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, f.CreatedAt)
}

func uploadedFiles(files []*multipart.FileHeader) ([]application.UploadedFile, []multipart.File, error) {
	out := make([]application.UploadedFile, 0, len(files))
	open := make([]multipart.File, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, open, err
		}
		open = append(open, src)
		duration, _ := strconv.ParseFloat(fh.Header.Get("X-Media-Duration"), 64)
		out = append(out, application.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Duration:    duration,
			Reader:      src,
		})
	}
	return out, open, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// Create POST /api/entries (multipart)
func (h *EntryHandler) Create(c *gin.Context) {
	var form entryForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	if form.Title == "" {
		response.Error[any](c, http.StatusBadRequest, "validation failed", gin.H{"title": "is required"})
		return
	}
	spans, err := form.spans()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid format_spans", nil)
		return
	}
	loc, err := form.location()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid location", nil)
		return
	}
	createdAt, err := form.createdAt()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "created_at must be RFC3339", nil)
		return
	}

	var fileHeaders []*multipart.FileHeader
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		fileHeaders = mf.File["media"]
	}
	files, open, err := uploadedFiles(fileHeaders)
	defer closeAll(open)
	if err != nil {
		h.fail(c, err)
		return
	}

	e, err := h.Service.Create(c.Request.Context(), c.GetString("userID"), application.CreateEntryInput{
		JournalID:   form.JournalID,
		Title:       form.Title,
		Description: form.Description,
		FormatSpans: spans,
		Location:    loc,
		CreatedAt:   createdAt,
		Files:       files,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toEntryView(e), "entry created", nil)
}

// List GET /api/entries?page=&limit=&journal_id=&sort=
func (h *EntryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter := repository.EntryFilter{
		JournalID: c.Query("journal_id"),
		Page:      page,
		Limit:     limit,
		SortDesc:  c.DefaultQuery("sort", "desc") != "asc",
	}

	entries, total, err := h.Service.List(c.Request.Context(), c.GetString("userID"), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	response.Success(c, http.StatusOK, toEntryViews(entries), "", response.NewPagination(page, limit, total))
}

// Search GET /api/entries/search?q=&limit=
func (h *EntryHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query parameter q", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.Service.Search(c.Request.Context(), c.GetString("userID"), q, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryViews(entries), "", nil)
}

// Nearby GET /api/entries/nearby?longitude=&latitude=&max_distance=
func (h *EntryHandler) Nearby(c *gin.Context) {
	lonStr, latStr := c.Query("longitude"), c.Query("latitude")
	if lonStr == "" || latStr == "" {
		response.Error[any](c, http.StatusBadRequest, "longitude and latitude are required", nil)
		return
	}
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	lat, latErr := strconv.ParseFloat(latStr, 64)
	if lonErr != nil || latErr != nil {
		response.Error[any](c, http.StatusBadRequest, "longitude and latitude must be numbers", nil)
		return
	}
	radius, _ := strconv.ParseFloat(c.Query("max_distance"), 64)

	entries, err := h.Service.Nearby(c.Request.Context(), c.GetString("userID"), lon, lat, radius)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryViews(entries), "", nil)
}

type monthCountView struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type entryStatsView struct {
	TotalEntries   int64            `json:"total_entries"`
	TotalMedia     int64            `json:"total_media"`
	EntriesByMonth []monthCountView `json:"entries_by_month"`
}

// Stats GET /api/entries/stats
func (h *EntryHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Stats(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	view := entryStatsView{
		TotalEntries:   stats.TotalEntries,
		TotalMedia:     stats.TotalMedia,
		EntriesByMonth: make([]monthCountView, 0, len(stats.ByMonth)),
	}
	for _, mc := range stats.ByMonth {
		view.EntriesByMonth = append(view.EntriesByMonth, monthCountView(mc))
	}
	response.Success(c, http.StatusOK, view, "", nil)
}

// Get GET /api/entries/:id
func (h *EntryHandler) Get(c *gin.Context) {
	e, err := h.Service.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryView(e), "", nil)
}

// Update PUT /api/entries/:id (multipart)
// Only present fields change; new media files are appended.
func (h *EntryHandler) Update(c *gin.Context) {
	var form entryForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	spans, err := form.spans()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid format_spans", nil)
		return
	}
	loc, err := form.location()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid location", nil)
		return
	}

	in := application.UpdateEntryInput{
		FormatSpans:   spans,
		Location:      loc,
		ClearLocation: c.PostForm("clear_location") == "true",
	}
	if _, ok := c.GetPostForm("journal_id"); ok {
		in.JournalID = &form.JournalID
	}
	if _, ok := c.GetPostForm("title"); ok {
		in.Title = &form.Title
	}
	if _, ok := c.GetPostForm("description"); ok {
		in.Description = &form.Description
	}

	var fileHeaders []*multipart.FileHeader
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		fileHeaders = mf.File["media"]
	}
	files, open, err := uploadedFiles(fileHeaders)
	defer closeAll(open)
	if err != nil {
		h.fail(c, err)
		return
	}
	in.Files = files

	e, err := h.Service.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryView(e), "entry updated", nil)
}

// Delete DELETE /api/entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "entry deleted", nil)
}

// DeleteMedia DELETE /api/entries/:id/media/:mediaId
func (h *EntryHandler) DeleteMedia(c *gin.Context) {
	e, err := h.Service.DeleteMedia(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("mediaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryView(e), "media removed", nil)
}
