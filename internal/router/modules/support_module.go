package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diaryfi/diaryfi-api/internal/container"
	handlers "github.com/diaryfi/diaryfi-api/internal/interface/http"
	"github.com/diaryfi/diaryfi-api/internal/interface/middleware"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

type SupportModule struct {
	Handler *handlers.SupportHandler
	JWT     *helpers.JWTManager
}

func NewSupportModule(h *handlers.SupportHandler, jwt *helpers.JWTManager) *SupportModule {
	return &SupportModule{Handler: h, JWT: jwt}
}

func (m *SupportModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/support")
	auth.Use(middleware.Auth(m.JWT))
	// Support mail is expensive to triage, keep the budget tight.
	auth.Use(middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Handler.Send)
	}
}
