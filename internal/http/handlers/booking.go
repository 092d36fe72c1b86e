package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/http/middleware"
	"transfers/internal/services"
	"transfers/internal/utils"
)

const bookingPath = "/booking"

// BookingPage renders the wizard at the visitor's current step. ?start=1 enters the wizard with
// the quick-book fields from the query string.
func (h *Handlers) BookingPage(c *gin.Context) {
	ctx := c.Request.Context()
	visitor := middleware.GetVisitor(c)
	lang := middleware.GetLang(c)

	if c.Query("start") == "1" {
		// a malformed number leaves the field empty and the trip form asks again
		trip, _ := services.TripFromValues(c.Request.URL.Query())
		d, err := h.Wizard.Start(ctx, visitor, services.Prefill{Trip: trip, ServiceID: c.Query("service"), Lang: lang})
		h.afterStep(c, d, err)
		return
	}

	d, err := h.Wizard.Current(ctx, visitor)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.renderBooking(c, d)
}

func (h *Handlers) renderBooking(c *gin.Context, d models.BookingDraft) {
	p := h.page(c, h.Translator.T(middleware.GetLang(c), "booking.title"))
	p.Draft = &d
	p.Steps = models.Steps()
	if d.LastError != nil {
		p.Error = h.draftMessage(p.Lang, d.LastError)
		p.ErrorField = d.LastError.Field
	}
	if d.Step == models.StepServiceSelection {
		list, err := h.Catalog.ListServices(c.Request.Context(), p.Lang)
		if err != nil {
			utils.LogError(middleware.GetRequestID(c), "booking", "list_services", err)
			p.Error = h.message(p.Lang, err)
		}
		p.Services = list
	}
	c.HTML(http.StatusOK, "booking", p)
}

// afterStep redirects back to the wizard after a form post. Failures the draft already records
// are shown there; anything else gets the error page.
func (h *Handlers) afterStep(c *gin.Context, d models.BookingDraft, err error) {
	if err != nil && d.LastError == nil && !domain.IsValidation(err) {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, bookingPath)
}

func (h *Handlers) BookingTrip(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.renderError(c, domain.ValidationError{Field: "trip_type", Msg: "invalid form", Err: err})
		return
	}
	d, err := h.Wizard.SubmitTripForm(c.Request.Context(), middleware.GetVisitor(c), c.Request.PostForm)
	h.afterStep(c, d, err)
}

func (h *Handlers) BookingService(c *gin.Context) {
	hours, err := formInt(c, "duration_hours")
	if err != nil {
		h.renderError(c, err)
		return
	}
	d, err := h.Wizard.SelectService(c.Request.Context(), middleware.GetVisitor(c), c.PostForm("service"), hours, middleware.GetLang(c))
	h.afterStep(c, d, err)
}

func (h *Handlers) BookingVehicle(c *gin.Context) {
	d, err := h.Wizard.SelectVehicle(c.Request.Context(), middleware.GetVisitor(c), c.PostForm("vehicle"))
	h.afterStep(c, d, err)
}

func (h *Handlers) BookingPassenger(c *gin.Context) {
	p := models.Passenger{
		Name:            c.PostForm("name"),
		Email:           c.PostForm("email"),
		Phone:           c.PostForm("phone"),
		SpecialRequests: c.PostForm("special_requests"),
	}
	d, err := h.Wizard.SubmitPassenger(c.Request.Context(), middleware.GetVisitor(c), p, c.PostForm("payment_method"), middleware.GetLang(c))
	h.afterStep(c, d, err)
}

func (h *Handlers) BookingBack(c *gin.Context) {
	d, err := h.Wizard.Back(c.Request.Context(), middleware.GetVisitor(c))
	h.afterStep(c, d, err)
}

func (h *Handlers) BookingReset(c *gin.Context) {
	d, err := h.Wizard.Reset(c.Request.Context(), middleware.GetVisitor(c))
	h.afterStep(c, d, err)
}

// VoucherPDF downloads the PDF voucher of the confirmed booking.
func (h *Handlers) VoucherPDF(c *gin.Context) {
	d, err := h.Wizard.Current(c.Request.Context(), middleware.GetVisitor(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	pdf, name, err := h.Voucher.Render(d, middleware.GetLang(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func formInt(c *gin.Context, name string) (int, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ValidationError{Field: name, Msg: "must be a whole number", Err: err}
	}
	return n, nil
}
