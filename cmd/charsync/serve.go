package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	coresys "github.com/l1jgo/charsync/internal/core/system"
	"github.com/l1jgo/charsync/internal/handler"
	"github.com/l1jgo/charsync/internal/system"
)

var preload []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the save loop for online characters until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&preload, "online", nil, "account:character pairs to bring online at start")
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx := cmd.Context()
	a, err := newApp(ctx, reg)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, log := a.cfg, a.log

	if cfg.Metrics.Enabled {
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("metrics listening", zap.String("addr", cfg.Metrics.Listen))
	}

	for _, pair := range preload {
		accountName, charName, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("--online %q: want account:character", pair)
		}
		accountID, guid, err := a.resolve(ctx, accountName, charName)
		if err != nil {
			return err
		}
		if _, err := handler.EnterWorld(ctx, a.deps, accountID, guid); err != nil {
			log.Warn("preload failed", zap.String("character", charName), zap.Error(err))
		}
	}

	runner := coresys.NewRunner()
	persistSys := system.NewPersistenceSystem(a.deps.World, a.deps.Flusher, a.deps.Bus, log, cfg.Persist.SaveIntervalTicks())
	runner.Register(system.NewEventDispatchSystem(a.deps.Bus))
	runner.Register(persistSys)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Persist.TickRate)
	defer ticker.Stop()

	log.Info("save loop started",
		zap.Duration("tick", cfg.Persist.TickRate),
		zap.Duration("save_interval", cfg.Persist.SaveInterval),
		zap.Int("online", a.deps.World.PlayerCount()),
	)

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Persist.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			// best effort: a failed store is not retried
			if failed := persistSys.SaveAllPlayers(); failed > 0 {
				log.Error("shutdown save incomplete", zap.Int("failed", failed))
			}
			// deliver the final PlayerSaved and mail events
			runner.TickPhase(coresys.PhasePreUpdate, 0)
			log.Info("stopped")
			return nil
		case <-ctx.Done():
			persistSys.SaveAllPlayers()
			return ctx.Err()
		}
	}
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}
