package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "vid"
	visitorKey    = "visitor"
	visitorMaxAge = 365 * 24 * 60 * 60
)

// Visitor identifies the browser by the vid cookie, issuing a new id when it is missing or not a UUID.
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if _, perr := uuid.Parse(vid); err != nil || perr != nil {
			vid = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(VisitorCookie, vid, visitorMaxAge, "/", "", secure, true)
		c.Set(visitorKey, vid)
		c.Next()
	}
}

func GetVisitor(c *gin.Context) string {
	return c.GetString(visitorKey)
}
