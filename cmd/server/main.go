// cmd/server/main.go

// 本服務提供多家銀行的帳戶建立、存提款、行內與跨行轉帳等 RESTful API。
// 此檔案負責初始化模組（config, bank, metrics, server, storage），
// 並啟動 HTTP 伺服器；結束時為每家銀行寫出一份總帳報表。

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ledgerbank/internal/bank"
	"ledgerbank/internal/config"
	"ledgerbank/internal/metrics"
	"ledgerbank/internal/server"
	"ledgerbank/internal/storage"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := cfg.NewLogger()

	// 依拓樸建立所有銀行與跨行手續費
	topo, err := config.LoadTopology(cfg.TopologyPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load topology")
	}
	m := metrics.New()
	reg, err := topo.Build(bank.WithLogger(log), bank.WithObserver(m))
	if err != nil {
		log.WithError(err).Fatal("failed to build banks")
	}

	s := server.NewServer(reg, m, log).WithRateLimit(cfg.RateLimit, cfg.RateBurst)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 監聽 SIGINT/SIGTERM，收到後優雅關閉
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "banks": reg.Names()}).Info("bank server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}

	// 關閉後所有交易已結束，此時的報表即為最終狀態
	if cfg.ReportDir != "" {
		paths, err := storage.SaveRegistry(cfg.ReportDir, reg)
		if err != nil {
			log.WithError(err).Error("failed to write ledger reports")
			os.Exit(1)
		}
		log.WithField("reports", paths).Info("ledger reports written")
	}
}
