package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain"
	"transfers/internal/geo"
	"transfers/internal/http/middleware"
)

// GET /api/places/autocomplete?input=
func (h *Handlers) PlacesAutocomplete(c *gin.Context) {
	if !h.Places.Enabled() {
		h.fail(c, geo.ErrDisabled)
		return
	}
	list, err := h.Places.Autocomplete(c.Request.Context(), c.Query("input"), middleware.GetLang(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": list})
}

// GET /api/places/resolve?place_id=
func (h *Handlers) PlacesResolve(c *gin.Context) {
	if !h.Places.Enabled() {
		h.fail(c, geo.ErrDisabled)
		return
	}
	id := strings.TrimSpace(c.Query("place_id"))
	if id == "" {
		h.fail(c, domain.ValidationError{Field: "location", Msg: "place_id is required"})
		return
	}
	addr, err := h.Places.Resolve(c.Request.Context(), id, middleware.GetLang(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr})
}

// GET /api/places/reverse?lat=&lng=
//
// Coordinates outside the service area are rejected without calling the provider.
func (h *Handlers) PlacesReverse(c *gin.Context) {
	if !h.Places.Enabled() {
		h.fail(c, geo.ErrDisabled)
		return
	}
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		h.fail(c, domain.ValidationError{Field: "location", Msg: "lat and lng must be numbers"})
		return
	}
	addr, err := h.Places.Reverse(c.Request.Context(), lat, lng, middleware.GetLang(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr})
}
