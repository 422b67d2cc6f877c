package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diaryfi/diaryfi-api/internal/container"
	handlers "github.com/diaryfi/diaryfi-api/internal/interface/http"
	"github.com/diaryfi/diaryfi-api/internal/interface/middleware"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

type EntryModule struct {
	Handler *handlers.EntryHandler
	JWT     *helpers.JWTManager
}

func NewEntryModule(h *handlers.EntryHandler, jwt *helpers.JWTManager) *EntryModule {
	return &EntryModule{Handler: h, JWT: jwt}
}

func (m *EntryModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/entries")
	auth.Use(middleware.Auth(m.JWT))
	// Media uploads are heavier than plain CRUD, keep the budget moderate.
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.List)
		auth.POST("", m.Handler.Create)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/nearby", m.Handler.Nearby)
		auth.GET("/stats", m.Handler.Stats)
		auth.GET("/:id", m.Handler.Get)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.DELETE("/:id/media/:mediaId", m.Handler.DeleteMedia)
	}
}
