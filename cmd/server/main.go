package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	badgehandler "insignia/internal/badge/handler"
	badgemetrics "insignia/internal/badge/metrics"
	"insignia/internal/badge/service"
	"insignia/internal/badge/store"
	"insignia/internal/badge/tracer"
	"insignia/internal/idtoken"
	"insignia/internal/platform/config"
	"insignia/internal/platform/health"
	"insignia/internal/platform/httpserver"
	"insignia/internal/platform/logger"
	httptransport "insignia/internal/transport/http"
	"insignia/pkg/platform/audit"
	request "insignia/pkg/platform/middleware/request"
	"insignia/pkg/secrets"
)

const (
	tokenIssuer   = "insignia"
	tokenAudience = "insignia-api"
	tokenTTL      = 24 * time.Hour

	shutdownTimeout = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP routers, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing insignia",
		"addr", cfg.Addr,
		"ops_addr", cfg.OpsAddr,
	)

	ownerHash, err := secrets.Hash(cfg.OwnerToken)
	if err != nil {
		log.Error("could not hash owner token", "error", err)
		os.Exit(1)
	}

	svc := service.New(store.NewInMemory(), service.Config{
		EnrolledRef:        cfg.EnrolledRef,
		CertifiedFolderRef: cfg.CertifiedFolderRef,
	},
		service.WithLogger(log),
		service.WithNotifier(audit.NewLogPublisher(log)),
		service.WithMetrics(badgemetrics.New()),
		service.WithTracer(tracer.NewOTel()),
	)

	tokens := idtoken.NewService(cfg.JWTSigningKey, tokenIssuer, tokenAudience, tokenTTL)

	apiRouter := httptransport.NewRouter(httptransport.Deps{
		Badges:         badgehandler.New(svc, log),
		TokenValidator: idtoken.NewMiddlewareAdapter(tokens),
		OwnerTokenHash: ownerHash,
		Metrics:        request.NewMetrics(),
		Logger:         log,
	})
	opsRouter := httptransport.NewOpsRouter(health.New(os.Getenv("INSIGNIA_ENV")), log)

	apiSrv := httpserver.New(cfg.Addr, apiRouter)
	opsSrv := httpserver.New(cfg.OpsAddr, opsRouter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting api server", "addr", cfg.Addr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting ops server", "addr", cfg.OpsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down servers gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		apiErr := apiSrv.Shutdown(shutdownCtx)
		opsErr := opsSrv.Shutdown(shutdownCtx)
		return errors.Join(apiErr, opsErr)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
