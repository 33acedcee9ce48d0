package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thorsignia/visitor-system/internal/api"
	"github.com/thorsignia/visitor-system/internal/core/ports"
	"github.com/thorsignia/visitor-system/internal/core/service"
	"github.com/thorsignia/visitor-system/internal/infrastructure/db/gormstore"
	mongostore "github.com/thorsignia/visitor-system/internal/infrastructure/db/mongo"
	redisstore "github.com/thorsignia/visitor-system/internal/infrastructure/db/redis"
	"github.com/thorsignia/visitor-system/internal/infrastructure/export"
	"github.com/thorsignia/visitor-system/internal/infrastructure/media"
	"github.com/thorsignia/visitor-system/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg, log := a.cfg, a.log
	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer gormstore.Close(db)

	if migrate {
		applied, err := gormstore.NewMigrator(db, log).Up(ctx)
		if err != nil {
			return err
		}
		log.Info().Strs("versions", applied).Msg("migrations applied")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Audit trail (optional) ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var (
		mdb   *mongo.Database
		audit ports.AuditPublisher = queue.Discard{}
	)
	mongoCfg := mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}
	if mongoCfg.Enabled() {
		client, database, err := mongostore.Connect(ctx, mongoCfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		auditRepo := mongostore.NewAuditRepository(database)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure audit indexes")
		}
		dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, log.With().Str("component", "audit").Logger())
		dispatcher.Start(workerCtx)
		defer func() {
			stopWorkers()
			dispatcher.Wait()
		}()

		mdb, audit = database, dispatcher
	} else {
		log.Info().Msg("MONGO_URI not set, audit trail disabled")
	}

	// --- Services ---
	store := media.NewLocalStore(cfg.Media.Root, cfg.Media.URL)
	visitorRepo := gormstore.NewVisitorRepository(db)
	visitRepo := gormstore.NewVisitRepository(db)

	deps := api.Dependencies{
		CheckIns: service.NewCheckInService(
			gormstore.NewTransactor(db), visitorRepo, visitRepo, gormstore.NewPhotoRepository(db), store, audit, log,
		),
		Visitors: service.NewVisitorService(visitorRepo, visitRepo, log),
		Visits:   service.NewVisitService(visitorRepo, visitRepo, log),
		Reports:  service.NewReportService(visitRepo, store, export.Encoders(), log),
		Admins: service.NewAdminService(
			gormstore.NewAdminRepository(db),
			redisstore.NewSessionStore(rdb),
			redisstore.NewLoginLimiter(rdb, cfg.Session.LoginMaxAttempts, cfg.Session.LoginWindow),
			cfg.Session.Secret,
			cfg.Session.TTL,
			log,
		),
		Media: store,
		DB:    db,
		Redis: rdb,
		Mongo: mdb,
		Log:   log,
	}

	e, err := api.NewRouter(cfg, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("media_root", store.Root()).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
