package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/http/middleware"
	"transfers/internal/services"
)

type draftResponse struct {
	Draft   models.BookingDraft `json:"draft"`
	Message string              `json:"message,omitempty"`
}

type startRequest struct {
	Trip    models.TripDetails `json:"trip"`
	Service string             `json:"service"`
}

type serviceRequest struct {
	Service       string `json:"service"`
	DurationHours int    `json:"duration_hours"`
}

type vehicleRequest struct {
	Vehicle string `json:"vehicle"`
}

type passengerRequest struct {
	models.Passenger
	PaymentMethod string `json:"payment_method"`
}

// respondDraft answers a wizard call. On failure the draft travels in the error details so the
// client can render the step it landed on.
func (h *Handlers) respondDraft(c *gin.Context, d models.BookingDraft, err error) {
	lang := middleware.GetLang(c)
	if err == nil {
		c.JSON(http.StatusOK, draftResponse{Draft: d, Message: h.draftMessage(lang, d.LastError)})
		return
	}
	msg := h.message(lang, err)
	field := domain.FieldOf(err)
	if d.LastError != nil {
		msg = h.draftMessage(lang, d.LastError)
		field = d.LastError.Field
	}
	details := gin.H{"draft": d}
	if field != "" {
		details["field"] = field
	}
	RespondDomainError(c, err, msg, details)
}

func (h *Handlers) WizardCurrent(c *gin.Context) {
	d, err := h.Wizard.Current(c.Request.Context(), middleware.GetVisitor(c))
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardStart(c *gin.Context) {
	var req startRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.Wizard.Start(c.Request.Context(), middleware.GetVisitor(c), services.Prefill{
		Trip:      req.Trip,
		ServiceID: req.Service,
		Lang:      middleware.GetLang(c),
	})
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardTrip(c *gin.Context) {
	var req models.TripDetails
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.Wizard.SubmitTrip(c.Request.Context(), middleware.GetVisitor(c), req)
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardService(c *gin.Context) {
	var req serviceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.Wizard.SelectService(c.Request.Context(), middleware.GetVisitor(c), req.Service, req.DurationHours, middleware.GetLang(c))
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardVehicle(c *gin.Context) {
	var req vehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.Wizard.SelectVehicle(c.Request.Context(), middleware.GetVisitor(c), req.Vehicle)
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardPassenger(c *gin.Context) {
	var req passengerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.Wizard.SubmitPassenger(c.Request.Context(), middleware.GetVisitor(c), req.Passenger, req.PaymentMethod, middleware.GetLang(c))
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardBack(c *gin.Context) {
	d, err := h.Wizard.Back(c.Request.Context(), middleware.GetVisitor(c))
	h.respondDraft(c, d, err)
}

func (h *Handlers) WizardReset(c *gin.Context) {
	d, err := h.Wizard.Reset(c.Request.Context(), middleware.GetVisitor(c))
	h.respondDraft(c, d, err)
}
