package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diaryfi/diaryfi-api/internal/container"
	handlers "github.com/diaryfi/diaryfi-api/internal/interface/http"
	"github.com/diaryfi/diaryfi-api/internal/interface/middleware"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

type JournalModule struct {
	Handler *handlers.JournalHandler
	JWT     *helpers.JWTManager
}

func NewJournalModule(h *handlers.JournalHandler, jwt *helpers.JWTManager) *JournalModule {
	return &JournalModule{Handler: h, JWT: jwt}
}

func (m *JournalModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/journals")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.List)
		auth.POST("", m.Handler.Create)
		auth.GET("/:id", m.Handler.Get)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
