package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/geo"
	"transfers/internal/http/middleware"
	"transfers/internal/http/views"
	"transfers/internal/i18n"
	"transfers/internal/services"
	"transfers/internal/utils"
)

// Handlers serves the site pages and the JSON API on top of the services built in main.
type Handlers struct {
	Translator   *i18n.Translator
	Sessions     services.SessionService
	Consent      services.ConsentService
	Catalog      services.CatalogService
	Wizard       *services.WizardService
	Voucher      services.VoucherService
	Contact      services.ContactService
	Places       *geo.Places
	AnalyticsURL string
	CookieSecure bool
}

// page collects what the layout needs for every request.
func (h *Handlers) page(c *gin.Context, title string) views.Page {
	lang := middleware.GetLang(c)
	consent, err := h.Consent.Get(c.Request.Context(), middleware.GetVisitor(c))
	if err != nil {
		utils.LogError(middleware.GetRequestID(c), "consent", "get", err)
	}
	return views.Page{
		Lang:         lang,
		Langs:        h.Translator.Languages(),
		Path:         c.Request.URL.Path,
		Title:        title,
		Session:      middleware.GetSession(c),
		ShowConsent:  err == nil && consent == models.ConsentUnset,
		AnalyticsURL: analyticsURL(consent, h.AnalyticsURL),
		GeoEnabled:   h.Places.Enabled(),
	}
}

func analyticsURL(c models.Consent, url string) string {
	if c != models.ConsentAccepted {
		return ""
	}
	return url
}

// message is the localized text for err.
func (h *Handlers) message(lang string, err error) string {
	_, code := errorCode(err)
	detail := ""
	if code == "auth" || code == "payment_failed" {
		detail = err.Error()
	}
	return h.messageFor(lang, code, domain.FieldOf(err), detail)
}

func (h *Handlers) draftMessage(lang string, e *models.DraftError) string {
	if e == nil {
		return ""
	}
	return h.messageFor(lang, e.Code, e.Field, e.Message)
}

func (h *Handlers) messageFor(lang, code, field, detail string) string {
	switch code {
	case "validation":
		if key := "errors.validation." + field; field != "" && h.Translator.Has(lang, key) {
			return h.Translator.T(lang, key)
		}
		return h.Translator.T(lang, "errors.validation.generic", map[string]any{"field": field})
	case "auth", "payment_failed":
		return h.Translator.T(lang, "errors."+code, detail)
	case "slot_unavailable", "fetch", "not_found", "conflict":
		return h.Translator.T(lang, "errors."+code)
	case "unavailable":
		return h.Translator.T(lang, "errors.fetch")
	default:
		return h.Translator.T(lang, "errors.internal")
	}
}

// fail answers a JSON request with the mapped status and a localized message.
func (h *Handlers) fail(c *gin.Context, err error) {
	RespondDomainError(c, err, h.message(middleware.GetLang(c), err), nil)
}

// renderError shows the error page with the mapped status.
func (h *Handlers) renderError(c *gin.Context, err error) {
	status, _ := errorCode(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	p := h.page(c, "")
	p.Error = h.message(p.Lang, err)
	c.HTML(status, "error", p)
}

func (h *Handlers) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		respondError(c, http.StatusNotFound, "not_found", "route not found", gin.H{"path": c.Request.URL.Path, "method": c.Request.Method})
		return
	}
	h.renderError(c, domain.NotFoundError{Resource: c.Request.URL.Path})
}
