package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pocketkid/pocketkid/config"
	"github.com/pocketkid/pocketkid/internal/service"
	"github.com/pocketkid/pocketkid/utils"
)

// NewRouter wires the thin HTTP edge. Everything behind /api (except login)
// is authenticated and passes through the scheduler trigger.
func NewRouter(svc *service.Service, cfg config.Config, logger *utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/login", LoginHandler(svc, cfg.JWTSecret))

	authed := router.Group("/api")
	authed.Use(Auth(svc, cfg.JWTSecret), SchedulerTrigger(svc, logger))
	{
		authed.GET("/notifications", NotificationFeedHandler(svc))
		authed.GET("/push/public-key", PushPublicKeyHandler(cfg.VAPIDPublicKey))
		authed.POST("/push/subscribe", PushSubscribeHandler(svc))
		authed.POST("/push/unsubscribe", PushUnsubscribeHandler(svc))
	}

	return router
}
