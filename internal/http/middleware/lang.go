package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	LangCookie = "lang"
	langKey    = "lang"
)

// Negotiator picks a supported language from the query, the cookie and Accept-Language.
type Negotiator interface {
	Negotiate(query, cookie, acceptLanguage string) string
}

// Language stores the negotiated page language. An explicit ?lang= is remembered in the cookie.
func Language(n Negotiator, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(LangCookie)
		query := c.Query("lang")
		lang := n.Negotiate(query, cookie, c.GetHeader("Accept-Language"))
		if query != "" && query == lang && cookie != lang {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(LangCookie, lang, visitorMaxAge, "/", "", secure, false)
		}
		c.Set(langKey, lang)
		c.Next()
	}
}

func GetLang(c *gin.Context) string {
	return c.GetString(langKey)
}
