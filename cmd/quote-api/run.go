package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/landclear/quote-planner/internal/api_server"
	"github.com/landclear/quote-planner/internal/cache"
	"github.com/landclear/quote-planner/internal/service"
	"github.com/landclear/quote-planner/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the quote api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, flush, err := loadConfig()
		if err != nil {
			return err
		}
		defer flush()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		assembler, err := newAssembler(cfg)
		if err != nil {
			return fmt.Errorf("loading pricing tables: %w", err)
		}

		resolver, err := newResolver(cfg, assembler.Tables())
		if err != nil {
			return err
		}

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		if err := migrate(ctx, cfg, db, st); err != nil {
			return err
		}

		producer, err := newEventProducer(cfg)
		if err != nil {
			return err
		}
		defer closeProducer(producer)

		opts := []service.QuoteServiceOption{service.WithEventWriter(producer)}
		if addr := cfg.Service.Cache.RedisAddr; addr != "" {
			redisCache, err := cache.NewRedisCacheFromAddr(ctx, addr, cfg.Service.Cache.TTL)
			if err != nil {
				// quoting works without the cache
				zap.S().Warnw("estimate cache disabled", "error", err)
			} else {
				defer redisCache.Close()
				opts = append(opts, service.WithEstimateCache(redisCache))
			}
		}

		quoteSrv := service.NewQuoteService(st, resolver, assembler, opts...)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, quoteSrv, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener, st)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("failed to run metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
