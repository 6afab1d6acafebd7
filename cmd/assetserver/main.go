package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pyropy/relstore/core/assetserver"
	"github.com/pyropy/relstore/lib/logger"
)

var log, _ = logger.New("assetserver-http")

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalln("startup", "ERROR", err)
	}
}

func run() error {
	cfg, err := assetserver.GetConfig()
	if err != nil {
		log.Errorw("startup", "error", "config error")
		return err
	}

	server, err := assetserver.NewAssetServer(cfg)
	if err != nil {
		log.Errorw("startup", "error", "asset storage init failed", "root", cfg.Root)
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		log.Errorw("startup", "error", "net listen failed")
		return err
	}

	listenAddr := l.Addr().String()
	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Serve(l)
	}()

	log.Infow("startup", "status", "asset server started", "address", listenAddr, "root", cfg.Root)
	defer log.Infow("shutdown", "status", "asset server stopped", "address", listenAddr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-shutdown:
		log.Infow("shutdown", "status", "asset server stopping", "address", listenAddr, "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(ctx)
	}

	return nil
}
