package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation", "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation", "invalid payload", gin.H{"error": err.Error()})
		return false
	}
	return true
}

// safeRedirect only follows local paths, so a crafted Referer or next= cannot leave the site.
func safeRedirect(target, fallback string) string {
	if len(target) > 0 && target[0] == '/' && (len(target) == 1 || (target[1] != '/' && target[1] != '\\')) {
		return target
	}
	return fallback
}
