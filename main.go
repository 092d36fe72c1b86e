package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"transfers/internal/apiclient"
	"transfers/internal/cache"
	intconfig "transfers/internal/config"
	"transfers/internal/geo"
	router "transfers/internal/http"
	"transfers/internal/http/handlers"
	"transfers/internal/http/views"
	"transfers/internal/i18n"
	"transfers/internal/services"
	"transfers/internal/storage"
	"transfers/internal/utils"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		utils.Log.WithError(err).Fatal("load config")
	}
	utils.InitLogger(env.LogLevel, env.LogFile)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	store, err := intconfig.OpenStore(env)
	if err != nil {
		utils.Log.WithError(err).Fatal("open visitor store")
	}
	defer store.Close()

	var rdb *redis.Client
	var catalogCache cache.Cache = cache.NewMemory()
	if env.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		rdb, err = cache.NewRedisClient(ctx, env.RedisURL)
		cancel()
		if err != nil {
			utils.Log.WithError(err).Warn("redis unavailable, using in-process cache and rate limits")
			rdb = nil
		} else {
			defer rdb.Close()
			catalogCache = cache.Redis{Client: rdb}
		}
	}

	tr, err := i18n.New(env.DefaultLang)
	if err != nil {
		utils.Log.WithError(err).Fatal("load translations")
	}
	bounds, err := env.Bounds()
	if err != nil {
		utils.Log.WithError(err).Fatal("invalid config")
	}

	backend := apiclient.New(env.APIBaseURL, env.APITimeout, env.APIRPS)
	sessions := services.SessionService{API: backend, Store: store, Sealer: storage.NewSealer(env.SessionSecret)}
	catalog := services.CatalogService{
		API:             backend,
		Cache:           catalogCache,
		TTL:             env.CatalogTTL,
		DefaultLang:     tr.DefaultLanguage(),
		EnforceCapacity: env.EnforceCapacity,
	}
	places := geo.NewPlaces(env.GeoBaseURL, env.GeoAPIKey, bounds, env.APITimeout)
	if !places.Enabled() {
		utils.Log.Info("GEO_API_KEY not set, address autocomplete disabled")
	}

	wizard := services.NewWizardService(store, catalog, backend, sessions, env.Location())
	wizard.Area = places.Bounds

	hs := &handlers.Handlers{
		Translator:   tr,
		Sessions:     sessions,
		Consent:      services.ConsentService{Store: store},
		Catalog:      catalog,
		Wizard:       wizard,
		Voucher:      services.VoucherService{Translator: tr, Currency: env.Currency},
		Contact:      services.ContactService{API: backend, Tokens: sessions},
		Places:       places,
		AnalyticsURL: env.AnalyticsURL,
		CookieSecure: env.CookieSecure,
	}

	renderer, err := views.New(tr, env.Currency)
	if err != nil {
		utils.Log.WithError(err).Fatal("parse templates")
	}
	r := router.NewRouter(env, hs, rdb)
	r.HTMLRender = renderer

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      40 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		utils.Log.Infof("listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	utils.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Log.WithError(err).Error("shutdown failed")
		return
	}
	utils.Log.Info("server stopped")
}
