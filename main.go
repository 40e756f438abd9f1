// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/dkemp/ballotbox/activity"
	"github.com/dkemp/ballotbox/cache"
	"github.com/dkemp/ballotbox/cliparse"
	"github.com/dkemp/ballotbox/db"
	"github.com/dkemp/ballotbox/router"
)

func main() {
	var err error

	// Load .env if present (dev convenience; real deployments set env)
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := sql.Open(cfg.DriverName(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Reference-data cache: shared Redis when configured, else in-process
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedis(cfg.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(ctx)
		cancel()
		if err != nil {
			slog.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		store = redisStore
		slog.Info("Using Redis reference-data cache", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemory()
	}

	// Audit sink
	activityLog := activity.New(dbConn)
	defer activityLog.Close()

	// Create router
	mux := router.NewRouter(dbConn, store, activityLog)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
