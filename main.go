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

	"github.com/mattjhawken/nexus/cliparse"
	"github.com/mattjhawken/nexus/db"
	"github.com/mattjhawken/nexus/deploy"
	"github.com/mattjhawken/nexus/host"
	"github.com/mattjhawken/nexus/middleware"
	"github.com/mattjhawken/nexus/router"
	"github.com/mattjhawken/nexus/store/sqlstore"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Pick the store backing every instance
	var open host.StoreOpener
	if cfg.DatabaseType != db.TypeMemory {
		var dbConn *sql.DB
		dbConn, err = db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		// Create schema (tables)
		if err := db.CreateSchema(dbConn); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		open = sqlstore.Opener(dbConn)
	} else {
		slog.Warn("Using in-memory store; state is lost on exit")
	}

	// Deploy the aggregator and its poll engine
	agg, err := deploy.Deploy(context.Background(), open, cfg, slog.Default())
	if err != nil {
		slog.Error("deployment failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(agg, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
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
