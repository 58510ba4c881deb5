// The daydream command serves the game's JSON HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tatianab/daydream/internal/config"
	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/engine"
	"github.com/tatianab/daydream/internal/eoc"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/quest"
	"github.com/tatianab/daydream/internal/server"
	"github.com/tatianab/daydream/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	repo, err := content.Load()
	if err != nil {
		log.Fatalf("loading content: %v", err)
	}
	if err := quest.ValidateContent(repo); err != nil {
		log.Fatalf("validating content: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	gateway, err := narration.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("creating storyteller gateway: %v", err)
	}
	defer gateway.Close()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(st,
			engine.New(gateway, st, repo),
			eoc.New(gateway, st, repo),
			gateway, repo),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("daydream listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serving: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
