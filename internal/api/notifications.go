package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/service"
)

// NotificationFeedHandler returns the caller's oldest unread notifications;
// ?mark_read=1 marks the returned batch read.
func NotificationFeedHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		markRead := c.Query("mark_read") == "1"

		items, err := svc.NotificationFeed(c.Request.Context(), user.ID, markRead)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func PushSubscribeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_subscription"})
			return
		}

		err := svc.SavePushSubscription(c.Request.Context(), user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
		if errors.Is(err, apperr.ErrInvalidSubscription) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_subscription"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func PushUnsubscribeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req unsubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Endpoint == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing_endpoint"})
			return
		}

		if err := svc.RemovePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// PushPublicKeyHandler exposes the VAPID public key browsers need to
// subscribe.
func PushPublicKeyHandler(publicKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
	}
}
