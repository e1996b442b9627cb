package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wedlii/wedbot/internal/assist"
	"github.com/wedlii/wedbot/internal/chat"
	"github.com/wedlii/wedbot/internal/config"
	"github.com/wedlii/wedbot/internal/httpapi"
	"github.com/wedlii/wedbot/internal/llm"
	"github.com/wedlii/wedbot/internal/memory"
	"github.com/wedlii/wedbot/internal/observability"
	"github.com/wedlii/wedbot/internal/planning"
	"github.com/wedlii/wedbot/internal/seed"
	"github.com/wedlii/wedbot/internal/vendors"
	"github.com/wedlii/wedbot/internal/wellness"
)

type Stores struct {
	Memory   memory.Store
	Wellness wellness.Store
	Planning planning.Store
	Vendors  vendors.Store
}

type BuildResult struct {
	Config    config.Config
	API       *httpapi.Server
	Router    *chat.Router
	Buffer    *memory.Buffer
	Planning  *planning.Service
	Stores    Stores
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Generator llm.Generator

	// Cleanup should be called on shutdown to release external resources (DB pools).
	Cleanup func() error
}

type closer interface{ Close() error }

// OpenStores opens every store against databaseURL, or in memory when it is
// empty. On failure the stores opened so far are closed.
func OpenStores(ctx context.Context, databaseURL string) (Stores, error) {
	var (
		s      Stores
		opened []closer
		err    error
	)
	fail := func(what string, err error) (Stores, error) {
		for _, c := range opened {
			_ = c.Close()
		}
		return Stores{}, fmt.Errorf("%s store init failed: %w", what, err)
	}

	if s.Memory, err = memory.NewStore(ctx, databaseURL); err != nil {
		return fail("memory", err)
	}
	opened = append(opened, s.Memory)
	if s.Wellness, err = wellness.NewStore(ctx, databaseURL); err != nil {
		return fail("wellness", err)
	}
	opened = append(opened, s.Wellness)
	if s.Planning, err = planning.NewStore(ctx, databaseURL); err != nil {
		return fail("planning", err)
	}
	opened = append(opened, s.Planning)
	if s.Vendors, err = vendors.NewStore(ctx, databaseURL); err != nil {
		return fail("vendors", err)
	}
	return s, nil
}

func (s Stores) Close() error {
	var errs []string
	for _, c := range []closer{s.Vendors, s.Planning, s.Wellness, s.Memory} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	stores, err := OpenStores(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err == nil {
			_, err = seed.Apply(ctx, f, stores.Wellness, stores.Vendors, logger)
		}
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
	}

	gen, err := llm.NewGenerator(ctx, llm.Config{
		Provider:      cfg.LLMProvider,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		Logger:        logger,
	})
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("llm generator init failed: %w", err)
	}
	logger.Info("llm provider selected", zap.String("provider", llm.Provider(gen)))

	buffer := memory.NewBuffer(stores.Memory, memory.BufferOptions{
		MaxTurns:  cfg.MemoryMaxTurns,
		RedactPII: cfg.MemoryRedactPII,
		Metrics:   metrics,
		Logger:    logger.Named("memory"),
	})
	plan := planning.NewService(stores.Planning, logger.Named("planning"))
	checklists := assist.NewChecklistWriter(gen)

	router := chat.NewRouter(chat.Options{
		Conversation:      buffer,
		Wellness:          stores.Wellness,
		Preferences:       plan,
		Checklists:        checklists,
		ChecklistSink:     plan,
		Generator:         gen,
		SystemPrompt:      assist.SystemPrompt,
		GenerationTimeout: cfg.GenerationTimeout,
		Logger:            logger.Named("chat"),
		Metrics:           metrics,
	})

	api := httpapi.New(cfg, httpapi.Deps{
		Chat:         router,
		Conversation: buffer,
		Planning:     plan,
		Checklists:   checklists,
		Vendors:      stores.Vendors,
		Comparer:     assist.NewVendorComparer(gen),
		Content:      assist.NewContentWriter(gen),
		Metrics:      metrics,
		Logger:       logger.Named("http"),
		Ready:        readiness(stores),
		Info: map[string]string{
			"llm_provider": llm.Provider(gen),
			"storage":      storageKind(cfg.DatabaseURL),
		},
	})

	return &BuildResult{
		Config:    cfg,
		API:       api,
		Router:    router,
		Buffer:    buffer,
		Planning:  plan,
		Stores:    stores,
		Metrics:   metrics,
		Logger:    logger,
		Generator: gen,
		Cleanup:   stores.Close,
	}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func readiness(s Stores) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		p, ok := s.Memory.(pinger)
		if !ok {
			return nil
		}
		if err := p.Ping(ctx); err != nil {
			return errors.New("database unreachable")
		}
		return nil
	}
}

func storageKind(databaseURL string) string {
	if databaseURL == "" {
		return "memory"
	}
	return "postgres"
}
