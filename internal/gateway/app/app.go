package app

import (
	"context"
	"fmt"
	"log"

	"sajtmaskin/internal/dispatch"
	"sajtmaskin/internal/enhance"
	"sajtmaskin/internal/gateway/config"
	"sajtmaskin/internal/gateway/handler"
	"sajtmaskin/internal/gateway/server"
	"sajtmaskin/internal/imagegen"
	"sajtmaskin/internal/inflight"
	"sajtmaskin/internal/intent"
	"sajtmaskin/internal/llmclient"
	"sajtmaskin/internal/media"
	"sajtmaskin/internal/orchestrator"
	"sajtmaskin/internal/projectstore"
	"sajtmaskin/internal/v0"
	"sajtmaskin/internal/websearch"
)

type App struct {
	server *server.Server
	llm    llmclient.LLMClient
	store  *projectstore.Store
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.V0APIKey == "" {
		return nil, fmt.Errorf("V0_API_KEY is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	// Classification and enhancement share one model client, retried and
	// logged through the middleware chain.
	gemini, err := llmclient.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to init model client: %w", err)
	}
	llm := llmclient.Wrap(gemini,
		llmclient.Retry(3, 0),
		llmclient.WithLogging(nil),
	)

	platform := v0.NewClient(cfg.V0APIKey)
	if cfg.V0BaseURL != "" {
		platform = v0.NewClientWithBase(cfg.V0BaseURL, cfg.V0APIKey)
	}

	store := projectstore.NewFromEnv(cfg.StorePath)
	store.EnsureLoaded()

	opts := []orchestrator.Option{orchestrator.WithStore(store)}

	if cfg.SearchAPIKey != "" && cfg.SearchEndpoint != "" {
		opts = append(opts, orchestrator.WithSearcher(websearch.NewClient(cfg.SearchEndpoint, cfg.SearchAPIKey)))
	} else {
		log.Println("web search disabled: SEARCH_ENDPOINT/SEARCH_API_KEY not set")
	}

	if cfg.ImageAPIKey != "" {
		var imgOpts []imagegen.Option
		if cfg.ImageBaseURL != "" {
			imgOpts = append(imgOpts, imagegen.WithBaseURL(cfg.ImageBaseURL))
		}
		if cfg.ImageModel != "" {
			imgOpts = append(imgOpts, imagegen.WithModel(cfg.ImageModel))
		}
		if cfg.ImageSize != "" {
			imgOpts = append(imgOpts, imagegen.WithSize(cfg.ImageSize))
		}
		if cfg.ImageQuality != "" {
			imgOpts = append(imgOpts, imagegen.WithQuality(cfg.ImageQuality))
		}
		opts = append(opts, orchestrator.WithImageGen(imagegen.NewClient(cfg.ImageAPIKey, imgOpts...)))
	} else {
		log.Println("image generation disabled: IMAGE_API_KEY not set")
	}

	var library media.Library
	if cfg.Media.Enabled {
		lib, err := media.NewS3Library(cfg.Media.S3Config())
		if err != nil {
			log.Printf("media library disabled: %v", err)
		} else {
			library = lib
			opts = append(opts, orchestrator.WithMediaLibrary(lib))
		}
	}

	pipeline := orchestrator.New(
		intent.NewClassifier(llm),
		enhance.New(llm),
		dispatch.New(platform),
		inflight.NewRegistry(0),
		opts...,
	)

	h := handler.New(pipeline, platform, store, library, cfg.V0Model)
	mux := server.NewMux(h)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		llm:    llm,
		store:  store,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.store.Save()
	if err := a.llm.Close(); err != nil {
		log.Printf("closing model client: %v", err)
	}
	return a.server.Shutdown(ctx)
}
