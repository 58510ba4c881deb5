package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tatianab/daydream/internal/config"
	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/engine"
	"github.com/tatianab/daydream/internal/eoc"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/quest"
	"github.com/tatianab/daydream/internal/store"
	"github.com/tatianab/daydream/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repo, err := content.Load()
	if err != nil {
		return err
	}
	if err := quest.ValidateContent(repo); err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	gateway, err := narration.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	defer gateway.Close()

	return tui.Run(tui.Deps{
		Engine:   engine.New(gateway, st, repo),
		Chapters: eoc.New(gateway, st, repo),
		Store:    st,
		Gateway:  gateway,
		Repo:     repo,
	})
}
