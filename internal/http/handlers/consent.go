package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain/models"
	"transfers/internal/http/middleware"
)

type consentRequest struct {
	Consent string `json:"consent" form:"consent"`
}

type consentResponse struct {
	Consent    models.Consent `json:"consent"`
	ShowBanner bool           `json:"show_banner"`
}

// POST /consent stores the banner choice and goes back to the page it came from.
func (h *Handlers) ConsentSubmit(c *gin.Context) {
	var req consentRequest
	_ = c.ShouldBind(&req)
	if err := h.Consent.Set(c.Request.Context(), middleware.GetVisitor(c), models.Consent(req.Consent)); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, safeRedirect(refererPath(c), "/"))
}

// GET /api/consent
func (h *Handlers) APIConsent(c *gin.Context) {
	cur, err := h.Consent.Get(c.Request.Context(), middleware.GetVisitor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consentResponse{Consent: cur, ShowBanner: cur == models.ConsentUnset})
}

// POST /api/consent
func (h *Handlers) APISetConsent(c *gin.Context) {
	var req consentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	cur := models.Consent(req.Consent)
	if err := h.Consent.Set(c.Request.Context(), middleware.GetVisitor(c), cur); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consentResponse{Consent: cur})
}

// DELETE /api/consent brings the banner back.
func (h *Handlers) APIClearConsent(c *gin.Context) {
	if err := h.Consent.Clear(c.Request.Context(), middleware.GetVisitor(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, consentResponse{ShowBanner: true})
}
