package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	intconfig "transfers/internal/config"
	h "transfers/internal/http/handlers"
	"transfers/internal/http/middleware"
	"transfers/internal/http/static"
	"transfers/internal/utils"
)

// NewRouter mounts the site pages and the JSON API. rdb may be nil; rate limits then count per
// instance.
func NewRouter(env intconfig.Env, hs *h.Handlers, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(
		otelgin.Middleware("transfers"),
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(http.StatusNoContent) })
	r.StaticFS("/static", http.FS(static.FS))
	r.GET("/api/health", h.Health)

	site := r.Group("",
		middleware.Visitor(env.CookieSecure),
		middleware.Language(hs.Translator, env.CookieSecure),
		middleware.AuthOptional(hs.Sessions),
	)
	r.NoRoute(middleware.Visitor(env.CookieSecure), middleware.Language(hs.Translator, env.CookieSecure), hs.NotFound)

	authLimit := middleware.NewRateLimiter(env.RateAuth, "auth", rdb)
	submitLimit := middleware.NewRateLimiter(env.RateSubmit, "submit", rdb)

	// Pages
	site.GET("/", hs.Home)
	site.GET("/services", hs.ServicesPage)
	site.GET("/fleet", hs.FleetPage)
	site.GET("/lang/:code", hs.SwitchLang)
	site.POST("/consent", hs.ConsentSubmit)

	site.GET("/login", hs.LoginPage)
	site.POST("/login", authLimit, hs.LoginSubmit)
	site.GET("/register", hs.RegisterPage)
	site.POST("/register", authLimit, hs.RegisterSubmit)
	site.POST("/logout", hs.LogoutSubmit)

	site.GET("/contact", hs.ContactPage)
	site.POST("/contact", submitLimit, hs.ContactSubmit)

	booking := site.Group("/booking")
	booking.GET("", hs.BookingPage)
	booking.POST("/trip", hs.BookingTrip)
	booking.POST("/service", hs.BookingService)
	booking.POST("/vehicle", hs.BookingVehicle)
	booking.POST("/passenger", submitLimit, hs.BookingPassenger)
	booking.POST("/back", hs.BookingBack)
	booking.POST("/reset", hs.BookingReset)
	booking.GET("/voucher.pdf", hs.VoucherPDF)

	api := site.Group("/api")
	{
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", authLimit, hs.APILogin)
		auth.POST("/register", authLimit, hs.APIRegister)
		auth.POST("/logout", hs.APILogout)
		auth.GET("/session", hs.APISession)

		consent := api.Group("/consent")
		consent.GET("", hs.APIConsent)
		consent.POST("", hs.APISetConsent)
		consent.DELETE("", hs.APIClearConsent)

		catalog := api.Group("/catalog")
		catalog.GET("/services", hs.APIServices)
		catalog.GET("/vehicles", hs.APIVehicles)

		places := api.Group("/places")
		places.GET("/autocomplete", hs.PlacesAutocomplete)
		places.GET("/resolve", hs.PlacesResolve)
		places.GET("/reverse", hs.PlacesReverse)

		wizard := api.Group("/wizard")
		wizard.GET("", hs.WizardCurrent)
		wizard.POST("/start", hs.WizardStart)
		wizard.POST("/trip", hs.WizardTrip)
		wizard.POST("/service", hs.WizardService)
		wizard.POST("/vehicle", hs.WizardVehicle)
		wizard.POST("/passenger", submitLimit, hs.WizardPassenger)
		wizard.POST("/back", hs.WizardBack)
		wizard.POST("/reset", hs.WizardReset)
		wizard.GET("/voucher.pdf", hs.VoucherPDF)

		api.POST("/contact", submitLimit, hs.APIContact)
	}

	h.SetRouter(r)
	return r
}
