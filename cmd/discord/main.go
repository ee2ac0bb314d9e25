// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "server-actions/internal/command"

	"server-actions/internal/config"
	"server-actions/internal/discord"
	"server-actions/internal/storage"
	v "server-actions/internal/version"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("[INFO] Metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Println("[ERR] Metrics listener:", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, store); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
