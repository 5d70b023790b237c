package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/authz"
	"github.com/tourneydesk/auction-backend/internal/config"
	"github.com/tourneydesk/auction-backend/internal/httpapi"
	"github.com/tourneydesk/auction-backend/internal/hub"
	"github.com/tourneydesk/auction-backend/internal/ledger"
	"github.com/tourneydesk/auction-backend/internal/logger"
	"github.com/tourneydesk/auction-backend/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logg, err := logger.New("auction-backend", cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logg.Sync() }()

	ctx := context.Background()
	lc := ledger.New(cfg.LedgerBaseURL, cfg.LedgerTimeout)
	oracle := authz.NewOracle(lc, logg)
	h := hub.NewHub(ctx, lc, cfg.DefaultIncrement, logg)

	metrics.StartServer(cfg.MetricsAddr)

	handler := httpapi.SetupRoutes(h, oracle, logg)

	logg.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("ledger", cfg.LedgerBaseURL))
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		logg.Fatal("server stopped", zap.Error(err))
	}
}
