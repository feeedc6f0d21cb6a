package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neelosewa/internal/cache"
	intconfig "neelosewa/internal/config"
	intdb "neelosewa/internal/db"
	"neelosewa/internal/events"
	router "neelosewa/internal/http"
	"neelosewa/internal/http/handlers"
	"neelosewa/internal/repositories"
	"neelosewa/internal/repositories/memory"
	"neelosewa/internal/services"
	"neelosewa/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	log := utils.Logger()

	env, err := intconfig.LoadEnv()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	utils.ConfigureLogger(env.Log.Level, env.Log.Format)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	if err := env.CheckSecrets(); err != nil {
		log.WithError(err).Fatal("refusing to start with the development JWT secret")
	}
	if env.UsesDefaultSecret() {
		log.Warn("JWT_SECRET not set, signing tokens with the development key")
	}

	store, err := openStore(env.DB)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer intconfig.CloseDB()

	var publisher events.Publisher = events.NopPublisher{}
	if env.Kafka.Enabled {
		kp, err := events.NewKafkaPublisher(env.Kafka.Brokers, env.Kafka.Topic)
		if err != nil {
			log.WithError(err).Warn("kafka unavailable, booking events disabled")
		} else {
			publisher = kp
		}
	}
	defer publisher.Close()

	var listings services.ListingCache
	if env.Redis.Addr != "" {
		lc := cache.NewListingCache(env.Redis.Addr, env.Redis.Password, env.Redis.DB, env.Redis.TTL)
		defer lc.Close()
		listings = lc
	}

	wallet := services.WalletService{Store: store}
	auth := services.AuthService{Store: store, Secret: []byte(env.JWT.Secret), TokenTTL: env.JWT.TTL}
	h := &handlers.Handler{
		Store:   store,
		Auth:    auth,
		Profile: services.ProfileService{Store: store},
		Wallet:  wallet,
		Bookings: services.BookingService{
			Store:         store,
			Wallet:        wallet,
			Events:        publisher,
			Cache:         listings,
			TicketRetries: env.TicketRetries,
		},
		Query:    services.QueryService{Store: store},
		Catalog:  services.CatalogService{Store: store, Cache: listings},
		Admin:    services.AdminService{Store: store, Cache: listings},
		Tracking: services.TrackingService{Store: store},
		Docs:     services.DocsService{Store: store},
	}

	r := router.NewRouter(env, h, auth)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
		return
	}

	log.Info("server stopped")
}

// openStore returns the in-memory store for local runs or a migrated MySQL store.
func openStore(s intconfig.DBSettings) (repositories.Store, error) {
	if s.Driver == "memory" {
		utils.Logger().Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	db, err := intconfig.ConnectDB(s)
	if err != nil {
		return nil, err
	}
	if s.Migrate {
		if err := intdb.Migrate(db.DB); err != nil {
			return nil, err
		}
	}
	return repositories.NewSQLStore(db), nil
}
