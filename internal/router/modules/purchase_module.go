package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diaryfi/diaryfi-api/internal/container"
	handlers "github.com/diaryfi/diaryfi-api/internal/interface/http"
	"github.com/diaryfi/diaryfi-api/internal/interface/middleware"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

type PurchaseModule struct {
	Handler *handlers.PurchaseHandler
	JWT     *helpers.JWTManager
}

func NewPurchaseModule(h *handlers.PurchaseHandler, jwt *helpers.JWTManager) *PurchaseModule {
	return &PurchaseModule{Handler: h, JWT: jwt}
}

func (m *PurchaseModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/purchases")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/verify", m.Handler.Verify)
	}
}
