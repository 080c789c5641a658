package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/service"
	"github.com/pocketkid/pocketkid/utils"
)

const userKey = "user"

// Auth resolves the bearer token into a user and aborts unauthenticated
// requests. Pre-authentication routes never pass through it.
func Auth(svc *service.Service, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		id, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := svc.User(c.Request.Context(), uint(id))
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// SchedulerTrigger is the system's only clock: every authenticated request
// gives the recurring scheduler a chance to run. A failed pass is logged and
// never fails the request that triggered it.
func SchedulerTrigger(svc *service.Service, logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(userKey); ok {
			if err := svc.ProcessDueRecurring(c.Request.Context(), time.Now().UTC()); err != nil {
				logger.Errorf("recurring scheduler pass failed: %v", err)
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
