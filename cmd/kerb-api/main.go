// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"kerb/internal/config"
	httptransport "kerb/internal/http"
	"kerb/internal/http/handlers"
	"kerb/internal/infra"
	kerbmaps "kerb/internal/maps"
	"kerb/internal/modules/location"
	"kerb/internal/modules/lot"
	"kerb/internal/modules/position"
	"kerb/internal/modules/pricing"
	"kerb/internal/modules/session"
	"kerb/internal/modules/vehicle"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		logger.Fatal().Msg("KERB_FIREBASE_PROJECT is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("firebase init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres init")
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	pricingSvc := pricing.NewService(pricing.NewPostgresStore(dbPool))
	sessionSvc := session.NewService(session.NewPostgresStore(dbPool), pricingSvc)
	locationSvc := location.NewService(location.NewPostgresStore(dbPool))
	lotSvc := lot.NewService(lot.NewPostgresStore(dbPool))
	vehicleSvc := vehicle.NewService(vehicle.NewPostgresStore(dbPool))
	positionStore := position.NewStore(redisClient)

	var walker handlers.WalkEstimator
	if cfg.Maps.APIKey != "" {
		ws, err := kerbmaps.NewWalkService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("maps init")
		}
		walker = ws
	}

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Sessions:  sessionSvc,
		Locations: locationSvc,
		Lots:      lotSvc,
		Vehicles:  vehicleSvc,
		Positions: positionStore,
		Walker:    walker,
		Verifier:  verifier,
		Logger:    logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	logger.Info().Str("addr", cfg.HTTP.Addr).Msg("kerb api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("serve")
	}
}
