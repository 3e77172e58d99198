// main wires high-level dependencies, exposes the HTTP router, and runs the
// background maintenance workers. Business logic lives in the internal
// service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"rinkside/internal/audit"
	auditmetrics "rinkside/internal/audit/metrics"
	authhandler "rinkside/internal/auth/handler"
	authmetrics "rinkside/internal/auth/metrics"
	authservice "rinkside/internal/auth/service"
	"rinkside/internal/lockout/cleanup"
	lockoutmetrics "rinkside/internal/lockout/metrics"
	lockoutservice "rinkside/internal/lockout/service"
	lockoutstore "rinkside/internal/lockout/store"
	"rinkside/internal/platform/config"
	"rinkside/internal/platform/database"
	"rinkside/internal/platform/health"
	"rinkside/internal/platform/httpserver"
	"rinkside/internal/platform/logger"
	rosterhandler "rinkside/internal/roster/handler"
	rosterservice "rinkside/internal/roster/service"
	rosterstore "rinkside/internal/roster/store"
	"rinkside/internal/session"
	teamhandler "rinkside/internal/team/handler"
	teammetrics "rinkside/internal/team/metrics"
	"rinkside/internal/team/retention"
	teamservice "rinkside/internal/team/service"
	teamstore "rinkside/internal/team/store"
	keyhandler "rinkside/internal/teamkey/handler"
	keymetrics "rinkside/internal/teamkey/metrics"
	keyservice "rinkside/internal/teamkey/service"
	keystore "rinkside/internal/teamkey/store"
	httptransport "rinkside/internal/transport/http"
	"rinkside/pkg/platform/tx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing rinkside",
		"addr", cfg.Addr,
		"postgres", cfg.DatabaseURL != "",
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	healthHandler := health.New(os.Getenv("RINKSIDE_ENV"))

	// Store selection: PostgreSQL when DATABASE_URL is set, memory otherwise.
	// In memory mode the team service's cascade list stands in for the
	// schema's ON DELETE CASCADE.
	var (
		teamStore    teamservice.Store
		keyStore     keyservice.Store
		lockoutStore lockoutservice.Store
		auditStore   audit.Store
		rosterStore  rosterservice.Store
		cascades     []teamservice.Cascade
		teamTx       teamservice.StoreTx
	)
	if pool != nil {
		defer pool.Close()
		healthHandler.RegisterCheck("postgres", func() error {
			return pool.Ping(context.Background())
		})
		teamStore = teamstore.NewPostgres(pool.DB())
		keyStore = keystore.NewPostgres(pool.DB())
		lockoutStore = lockoutstore.NewPostgres(pool.DB())
		auditStore = audit.NewPostgres(pool.DB())
		rosterStore = rosterstore.NewPostgres(pool.DB())
		// Team creation spans the teams and team_keys tables; both stores
		// share the pool, so one runner commits the rows together.
		teamTx = tx.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, running on in-memory stores")
		mTeams := teamstore.NewMemoryStore()
		mKeys := keystore.NewMemoryStore()
		mLockouts := lockoutstore.NewMemoryStore()
		mAudit := audit.NewMemoryStore()
		mRoster := rosterstore.NewMemoryStore()
		teamStore, keyStore, lockoutStore, auditStore, rosterStore = mTeams, mKeys, mLockouts, mAudit, mRoster
		cascades = []teamservice.Cascade{mKeys, mLockouts, mAudit, mRoster}
	}

	recorder := audit.NewRecorder(auditStore,
		audit.WithLogger(log),
		audit.WithMetrics(auditmetrics.New()),
	)

	keys := keyservice.New(keyStore,
		keyservice.WithLogger(log),
		keyservice.WithAuditRecorder(recorder),
		keyservice.WithMetrics(keymetrics.New()),
	)
	teamOpts := []teamservice.Option{
		teamservice.WithLogger(log),
		teamservice.WithAuditRecorder(recorder),
		teamservice.WithMetrics(teammetrics.New()),
		teamservice.WithTermsVersion(cfg.TermsVersion),
		teamservice.WithCascades(cascades...),
	}
	if teamTx != nil {
		teamOpts = append(teamOpts, teamservice.WithStoreTx(teamTx))
	}
	teams := teamservice.New(teamStore, keys, teamOpts...)
	lockouts := lockoutservice.New(lockoutStore,
		lockoutservice.WithWindow(cfg.LockoutWindow),
		lockoutservice.WithCeiling(cfg.LockoutCeiling),
		lockoutservice.WithMetrics(lockoutmetrics.New()),
	)
	sessions := session.New(cfg.JWTSigningKey, cfg.SessionTTL)
	auth := authservice.New(teams, keys, lockouts, sessions,
		authservice.WithLogger(log),
		authservice.WithAuditRecorder(recorder),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithTermsVersion(cfg.TermsVersion),
	)
	roster := rosterservice.New(rosterStore)

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:   authhandler.New(auth, cfg.SessionTTL, log),
		Team:   teamhandler.New(teams, log),
		Keys:   keyhandler.New(keys, log),
		Audit:  audit.NewHandler(auditStore, log),
		Roster: rosterhandler.New(roster, log),
		Health: healthHandler,
	}, httptransport.Guards{Sessions: sessions, Keys: keys}, log)

	srv := httpserver.New(cfg.Addr, router)

	lockoutWorker := cleanup.New(lockouts,
		cleanup.WithLogger(log),
		cleanup.WithInterval(cfg.CleanupInterval),
	)
	retentionWorker := retention.New(teams,
		retention.WithLogger(log),
		retention.WithCutoff(cfg.RetentionCutoff),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return lockoutWorker.Start(gctx)
	})
	g.Go(func() error {
		return retentionWorker.Start(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
