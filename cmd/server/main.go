package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dayliz/config"
	"dayliz/internal/database"
	"dayliz/internal/fraud"
	"dayliz/internal/handler"
	"dayliz/internal/repository"
	"dayliz/internal/router"
	"dayliz/internal/service"
	"dayliz/internal/ws"
	"dayliz/pkg/gateway"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("[MAIN] database connection failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[MAIN] migration failed: %v", err)
	}

	userRepo := repository.NewUserRepo(db)
	addressRepo := repository.NewAddressRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	gatewayOrderRepo := repository.NewGatewayOrderRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	var gw gateway.Client
	var mock *gateway.MockGateway
	if cfg.Gateway.Mode == "mock" {
		log.Printf("[MAIN] payment gateway running in mock mode")
		mock = gateway.NewMockGateway(&cfg.Gateway)
		gw = mock
	} else {
		gw = gateway.NewRazorpayClient(&cfg.Gateway)
	}

	fraudEngine := fraud.NewEngine(cfg, orderRepo, nil, nil)
	hub := ws.NewHub()

	orchestrator := service.NewPaymentOrchestrator(cfg, orderRepo, gatewayOrderRepo, addressRepo, auditRepo, gw, fraudEngine, hub)
	webhookProcessor := service.NewWebhookProcessor(gw, orchestrator, auditRepo)
	authService := service.NewAuthService(&cfg.JWT, userRepo)

	r := router.New(cfg, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Payment: handler.NewPaymentHandler(orchestrator, mock),
		Webhook: handler.NewPaymentWebhookHandler(webhookProcessor),
		Address: handler.NewAddressHandler(addressRepo),
		Hub:     hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// safety net behind lazy expiry: times out processing payments whose
	// window passed without the client ever polling status
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := orchestrator.ExpireStalePayments(ctx); err != nil {
					log.Printf("[MAIN] payment sweep failed: %v", err)
				}
			}
		}
	}()

	go func() {
		log.Printf("[MAIN] server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[MAIN] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[MAIN] shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[MAIN] forced shutdown: %v", err)
	}
	log.Println("[MAIN] server stopped")
}
