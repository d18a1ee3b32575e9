// Package main is the entry point for the matcher worker, which runs the
// discovery pipeline on a schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/neticnz/matcher/internal/app"
)

// version can be set at build time via -ldflags
var version = "dev"

const flushCacheTimeout = 30 * time.Second

func main() {
	var configPath string
	var flushCache bool
	flag.StringVar(&configPath, "config", "config.yml", "Path to configuration file")
	flag.BoolVar(&flushCache, "flush-cache", false, "Flush the Redis seen-URL cache and exit")
	flag.Parse()

	// Optional .env for local development; real deployments set env vars
	_ = godotenv.Load()

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Version:    version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to close application: %v\n", closeErr)
		}
	}()

	if flushCache {
		ctx, cancel := context.WithTimeout(context.Background(), flushCacheTimeout)
		defer cancel()

		if flushErr := application.FlushCache(ctx); flushErr != nil {
			application.Logger().Error("Failed to flush cache")
			os.Exit(1)
		}

		application.Logger().Info("Cache flushed successfully")
		return
	}

	if runErr := application.RunWorker(context.Background()); runErr != nil {
		application.Logger().Error("Application error")
		os.Exit(1)
	}
}
