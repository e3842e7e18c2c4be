package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"zaqeen-be/internal/botcheck"
	"zaqeen-be/internal/cart"
	"zaqeen-be/internal/checkout"
	"zaqeen-be/internal/config"
	"zaqeen-be/internal/coupon"
	"zaqeen-be/internal/db"
	"zaqeen-be/internal/inventory"
	"zaqeen-be/internal/logger"
	"zaqeen-be/internal/middleware"
	"zaqeen-be/internal/order"
	"zaqeen-be/internal/risk"
	"zaqeen-be/internal/settings"
	"zaqeen-be/internal/transport"
	"zaqeen-be/internal/verification"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	settingsRepo := settings.NewRepository(database)

	couponRepo := coupon.NewRepository(database)
	couponSvc := coupon.NewService(couponRepo)

	inventoryRepo := inventory.NewRepository(database)
	inventorySvc := inventory.NewService(inventoryRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)

	blacklistRepo := risk.NewBlacklistRepository(database)
	riskSvc := risk.NewService(blacklistRepo, orderRepo)

	cartRepo := cart.NewRepository(database)

	proofs := verification.NewProofIssuer(cfg.OTPTokenSecret)
	smsSender := verification.NewSMSGateway(cfg.SMSBaseURL, cfg.SMSApiKey)
	verificationRepo := verification.NewRepository(database)
	verificationSvc := verification.NewService(verificationRepo, smsSender, proofs)

	botVerifier := botcheck.NewGateway(cfg.BotCheckURL, cfg.BotCheckSecret)

	checkoutSvc := checkout.NewService(
		settingsRepo,
		couponSvc,
		riskSvc,
		inventorySvc,
		orderSvc,
		cartRepo,
		botVerifier,
		proofs,
	)

	handler := transport.NewHandler(checkoutSvc, verificationSvc)

	var routes http.Handler = handler.Routes()
	routes = middleware.RateLimitMiddleware(routes)
	routes = middleware.LoggingMiddleware(routes)
	routes = logger.RequestIDMiddleware(routes)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := riskSvc.WarmBloom(ctx); err != nil {
		logger.L().Warn("bloom warm-up failed, blacklist checks go straight to the database", zap.Error(err))
	}

	sweeper := inventory.NewSweeper(inventorySvc, cfg.SweepInterval)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := sweeper.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}

	logger.L().Info("server stopped")
}
