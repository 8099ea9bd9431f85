package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/peopleforge/peopleforge/modules"
	onboardingservices "github.com/peopleforge/peopleforge/modules/onboarding/services"
	"github.com/peopleforge/peopleforge/pkg/application"
	"github.com/peopleforge/peopleforge/pkg/composables"
	"github.com/peopleforge/peopleforge/pkg/configuration"
	"github.com/peopleforge/peopleforge/pkg/eventbus"
	"github.com/peopleforge/peopleforge/pkg/metrics"
	"github.com/peopleforge/peopleforge/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Run(context.Background(), conf.Database.Opts); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	startSessionPurge(conf, pool, logger, app)

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// startSessionPurge removes expired, unconfirmed upload sessions on a
// fixed interval so abandoned analyzes never accumulate.
func startSessionPurge(
	conf *configuration.Configuration,
	pool *pgxpool.Pool,
	logger *logrus.Logger,
	app application.Application,
) {
	imports := app.Service(onboardingservices.ImportService{}).(*onboardingservices.ImportService)
	purgeLog := logger.WithField("component", "session_purge")

	go func() {
		ticker := time.NewTicker(conf.Import.PurgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx := composables.WithPool(context.Background(), pool)
			purged, err := imports.PurgeExpired(ctx)
			if err != nil {
				purgeLog.WithError(err).Warn("session purge failed")
				continue
			}
			if purged > 0 {
				purgeLog.WithField("purged", purged).Info("expired sessions removed")
			}
		}
	}()
}
