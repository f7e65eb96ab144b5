// Command toxexd serves the toxin extraction API over HTTP.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/chemsift/toxex/config"
	"github.com/chemsift/toxex/core/extract"
	"github.com/chemsift/toxex/core/pipeline"
	"github.com/chemsift/toxex/providers/ai/openai"
	"github.com/chemsift/toxex/toxin"
	"github.com/chemsift/toxex/web/fetch"
	"github.com/chemsift/toxex/web/page"
)

func main() {
	addr := flag.String("addr", "", "Listen address (overrides TOXEX_LISTEN_ADDR)")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	fetcher := fetch.New(
		fetch.WithProxyAPIKey(cfg.ScraperAPIKey),
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithRetryAttempts(cfg.RetryAttempts),
	)
	resolver := page.NewResolver(fetcher)

	provider := openai.New().WithAPIKey(cfg.OpenAIAPIKey)
	extractor := extract.New[toxin.List](provider,
		extract.WithModel(cfg.Model),
		extract.WithSchemaName("toxin_list"),
	)

	p := pipeline.New(resolver, extractor)

	h := newHandler(p, resolver)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /extract", h.handleExtract)
	mux.HandleFunc("POST /parse/url", h.handleParseURL)
	mux.HandleFunc("POST /parse/text", h.handleParseText)
	mux.HandleFunc("GET /url/text", h.handleURLText)
	mux.HandleFunc("GET /url/markdown", h.handleURLMarkdown)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Middleware chain: recovery -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(cfg.ServerAPIKey, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // extraction over many sources can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.ListenAddr, "model", cfg.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
