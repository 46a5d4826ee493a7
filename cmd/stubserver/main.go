// Package main starts the in-memory stub backend, serving the social
// REST API for local development of the client.
package main

import (
	"flag"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/logger"
	"github.com/tecsocial/client/internal/stubserver"
)

func main() {
	var (
		addr  string
		level string
	)
	flag.StringVar(&addr, "a", ":8080", "listen address")
	flag.StringVar(&level, "l", "info", "log level")
	flag.Parse()
	if env := os.Getenv("STUB_ADDR"); env != "" {
		addr = env
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(level); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	server := &http.Server{
		Addr:    addr,
		Handler: stubserver.New(zapLogger).Router(),
	}

	zapLogger.Info("starting stub backend", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
