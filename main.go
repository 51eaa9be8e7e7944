package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/johbar/metadata-normalization-service/internal/cache"
	mnsnats "github.com/johbar/metadata-normalization-service/internal/cache/nats"
	"github.com/johbar/metadata-normalization-service/internal/config"
	"github.com/johbar/metadata-normalization-service/internal/docmeta"
	"github.com/johbar/metadata-normalization-service/internal/normalizer"
)

var srv http.Server

func main() {
	conf, err := config.NewMnsConfigFromEnv()
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.LogLevel, AddSource: conf.Debug}))
	slog.SetDefault(logger)

	httpClient := &http.Client{Transport: &http.Transport{DisableCompression: conf.HttpClientDisableCompression}}
	df := docmeta.New(conf, logger)

	args := os.Args
	// one shot mode: don't start a server, just process a single file provided on the command line
	if len(args) > 1 {
		n := normalizer.New(conf, df, &cache.NopCache{}, logger, httpClient)
		n.PrintMetadata(args[1])
		return
	}

	if os.Getenv("GOMEMLIMIT") != "" {
		logger.Info("GOMEMLIMIT", "Bytes", debug.SetMemoryLimit(-1), "MBytes", debug.SetMemoryLimit(-1)/1024/1024)
	}
	buildinfo, _ := debug.ReadBuildInfo()
	logger.Debug("Info", "buildinfo", buildinfo)

	var mnsCache cache.Cache
	nc, err := mnsnats.SetupNatsConnection(*conf, logger)
	if err != nil {
		if conf.FailWithoutJetstream {
			logger.Error("FATAL: NATS could not be connected", "err", err)
			os.Exit(1)
		}
		logger.Warn("NATS not connected. Caching disabled.", "err", err)
	}
	if nc != nil {
		defer nc.Drain()
		kv, err := cache.New(*conf, logger, nc)
		if err != nil {
			if conf.FailWithoutJetstream {
				logger.Error("FATAL: cache could not be initialized", "err", err)
				os.Exit(1)
			}
			logger.Warn("Cache disabled. Every request will be processed from scratch.", "err", err)
		} else {
			mnsCache = kv
		}
	}
	if mnsCache == nil {
		mnsCache = &cache.NopCache{}
	}

	n := normalizer.New(conf, df, mnsCache, logger, httpClient)
	if nc != nil {
		n.RegisterNatsService(nc)
	}

	router := gin.New()
	router.Use(sloggin.New(logger), gin.Recovery())
	router.POST("/", n.NormalizeBody)
	router.GET("/", n.NormalizeRemote)
	router.HEAD("/", n.NormalizeRemote)
	router.GET("/debug/vars", expvar.Handler())

	srv.Addr = conf.SrvAddr
	srv.Handler = router

	if conf.NoHttp {
		if nc == nil {
			logger.Error("Fatal: NATS not connected and HTTP disabled.")
			os.Exit(1)
		}
		wait := make(chan bool, 1)
		logger.Info("Service started with no HTTP endpoints. Waiting for interrupt.")
		<-wait
	}
	go handleInterrupt(logger)
	logger.Info("Service started", "address", srv.Addr)
	defer logger.Info("HTTP Server stopped.")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		// Error starting or closing listener:
		logger.Error("Webserver failed", "err", err)
	}
}

func handleInterrupt(logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal. Terminating gracefully.", "signal", sig.String())
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("Shutdown failed", "err", err)
	}
}
