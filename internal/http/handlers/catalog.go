package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/http/middleware"
	"transfers/internal/services"
	"transfers/internal/utils"
)

// Home shows the quick-book form and the service list. A catalog outage only hides the list.
func (h *Handlers) Home(c *gin.Context) {
	p := h.page(c, "")
	list, err := h.Catalog.ListServices(c.Request.Context(), p.Lang)
	if err != nil {
		utils.LogError(middleware.GetRequestID(c), "home", "list_services", err)
	}
	p.Services = list
	c.HTML(http.StatusOK, "home", p)
}

func (h *Handlers) ServicesPage(c *gin.Context) {
	p := h.page(c, h.Translator.T(middleware.GetLang(c), "catalog.services_title"))
	list, err := h.Catalog.ListServices(c.Request.Context(), p.Lang)
	if err != nil {
		h.renderError(c, err)
		return
	}
	p.Services = list
	c.HTML(http.StatusOK, "services", p)
}

func (h *Handlers) FleetPage(c *gin.Context) {
	p := h.page(c, h.Translator.T(middleware.GetLang(c), "catalog.fleet_title"))
	list, err := h.Catalog.ListVehicles(c.Request.Context(), "", models.TripDetails{})
	if err != nil {
		h.renderError(c, err)
		return
	}
	p.Vehicles = list
	c.HTML(http.StatusOK, "fleet", p)
}

// GET /api/catalog/services
func (h *Handlers) APIServices(c *gin.Context) {
	list, err := h.Catalog.ListServices(c.Request.Context(), middleware.GetLang(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

// GET /api/catalog/vehicles?service=&passengers=&luggage=&date=&time=
//
// With a service the answer is the matched list, cheapest first with capacity warnings.
func (h *Handlers) APIVehicles(c *gin.Context) {
	trip, err := services.TripFromValues(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}
	serviceID := strings.TrimSpace(c.Query("service"))
	if serviceID == "" {
		list, err := h.Catalog.ListVehicles(c.Request.Context(), "", trip)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vehicles": list})
		return
	}

	if _, err := h.Catalog.GetService(c.Request.Context(), middleware.GetLang(c), serviceID); err != nil {
		if domain.IsNotFound(err) {
			err = domain.ValidationError{Field: "service", Msg: "unknown service", Err: err}
		}
		h.fail(c, err)
		return
	}
	if trip.Passengers == 0 {
		trip.Passengers = 1
	}
	list, err := h.Catalog.ListVehicles(c.Request.Context(), serviceID, trip)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": h.Catalog.Match(serviceID, list, trip)})
}
