package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/http/middleware"
	"transfers/internal/services"
)

// refererPath is the local path of the Referer header, or "".
func refererPath(c *gin.Context) string {
	u, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || u.Path == "" {
		return ""
	}
	if u.Host != "" && u.Host != c.Request.Host {
		return ""
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// GET /lang/:code remembers the language and returns to the previous page.
func (h *Handlers) SwitchLang(c *gin.Context) {
	code := c.Param("code")
	if !h.Translator.Supports(code) {
		h.renderError(c, domain.NotFoundError{Resource: "language " + code})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.LangCookie, code, 365*24*60*60, "/", "", h.CookieSecure, false)
	c.Redirect(http.StatusSeeOther, safeRedirect(refererPath(c), "/"))
}

// GET /contact
func (h *Handlers) ContactPage(c *gin.Context) {
	p := h.page(c, h.Translator.T(middleware.GetLang(c), "contact.title"))
	if c.Query("sent") == "1" {
		p.Notice = h.Translator.T(p.Lang, "contact.sent")
	}
	if sess := middleware.GetSession(c); sess.Authenticated {
		p.Form = map[string]string{"name": sess.Identity.Name, "email": sess.Identity.Email}
	}
	c.HTML(http.StatusOK, "contact", p)
}

// POST /contact
func (h *Handlers) ContactSubmit(c *gin.Context) {
	var f services.ContactForm
	_ = c.ShouldBind(&f)
	if err := h.Contact.Send(c.Request.Context(), middleware.GetVisitor(c), f); err != nil {
		status, _ := errorCode(err)
		p := h.page(c, h.Translator.T(middleware.GetLang(c), "contact.title"))
		p.Error = h.message(p.Lang, err)
		p.ErrorField = domain.FieldOf(err)
		p.Form = map[string]string{"name": f.Name, "email": f.Email, "phone": f.Phone, "subject": f.Subject, "message": f.Message}
		c.HTML(status, "contact", p)
		return
	}
	c.Redirect(http.StatusSeeOther, "/contact?sent=1")
}

// POST /api/contact
func (h *Handlers) APIContact(c *gin.Context) {
	var f services.ContactForm
	if !BindJSONOrError(c, &f) {
		return
	}
	if err := h.Contact.Send(c.Request.Context(), middleware.GetVisitor(c), f); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": h.Translator.T(middleware.GetLang(c), "contact.sent")})
}
