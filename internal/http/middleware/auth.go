package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain/models"
	"transfers/internal/utils"
)

const sessionKey = "session"

type SessionRestorer interface {
	Restore(ctx context.Context, visitor string) (models.Session, error)
}

// AuthOptional loads the visitor's session when there is one. Anonymous visitors pass through.
func AuthOptional(sessions SessionRestorer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Restore(c.Request.Context(), GetVisitor(c))
		if err != nil {
			utils.LogError(GetRequestID(c), "auth", "restore", err)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func GetSession(c *gin.Context) models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(models.Session); ok {
			return s
		}
	}
	return models.Session{}
}
