package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsbrief/internal/bot"
	"newsbrief/internal/config"
	"newsbrief/internal/extract"
	"newsbrief/internal/feed"
	"newsbrief/internal/runner"
	"newsbrief/internal/server"
	"newsbrief/internal/source"
	"newsbrief/internal/summarize"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	resolver, err := initResolver(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize source resolver",
			"error", err,
			"sourcesPath", cfg.SourcesPath)

		return
	}

	fetchClient := &http.Client{Timeout: cfg.FetchTimeout}

	provider := initProvider(ctx, cfg, log)
	summarizer := summarize.New(provider, cfg.CacheSize, log)

	pipeline := runner.New(
		resolver,
		extract.New(fetchClient, log),
		summarizer,
		log,
	)

	srv := server.New(
		resolver,
		feed.NewFetcher(fetchClient, log),
		pipeline,
		server.Defaults{MinWords: cfg.DefaultMinWords, MaxWords: cfg.DefaultMaxWords},
		log,
	)

	if err = srv.Start(cfg.Addr); err != nil {
		log.ErrorContext(ctx, "Failed to start HTTP server",
			"error", err,
			"addr", cfg.Addr)

		return
	}
	log.InfoContext(ctx, "HTTP server is started",
		"addr", cfg.Addr)

	botInst := initBot(ctx, cfg, pipeline, log)
	if botInst != nil {
		go func() {
			botInst.Start(ctx)
		}()
		log.InfoContext(ctx, "Bot is started",
			"updateTimeoutSeconds", bot.BotUpdateTimeout)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}

	if botInst != nil {
		botInst.Stop()
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())
}

func initResolver(ctx context.Context, cfg config.Config, log *slog.Logger) (*source.Resolver, error) {
	profiles := source.Defaults()

	if cfg.SourcesPath != "" {
		loaded, err := source.LoadProfiles(cfg.SourcesPath)
		if err != nil {
			return nil, err
		}

		profiles = loaded
		log.InfoContext(ctx, "Source profiles are loaded from file",
			"sourcesPath", cfg.SourcesPath,
			"count", len(profiles))
	}

	return source.NewResolver(profiles)
}

// initProvider returns nil when the selected provider has no API key.
// The process still serves the UI; every action then surfaces the
// configuration error instead.
func initProvider(ctx context.Context, cfg config.Config, log *slog.Logger) summarize.Provider {
	if err := cfg.CheckProviderKey(); err != nil {
		log.WarnContext(ctx, "Summarization is disabled",
			"error", err,
			"provider", cfg.Provider)

		return nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider, err := summarize.NewOpenAIProvider(cfg.APIKey(), cfg.OpenAIModel, cfg.LLMTimeout)
		if err != nil {
			log.ErrorContext(ctx, "Failed to create OpenAI provider so summarization is disabled",
				"error", err,
				"model", cfg.OpenAIModel)

			return nil
		}

		log.InfoContext(ctx, "Summarization provider is initialized",
			"provider", cfg.Provider,
			"model", cfg.OpenAIModel)

		return provider

	default:
		provider, err := summarize.NewGeminiProvider(
			cfg.APIKey(),
			cfg.GeminiModel,
			&http.Client{Timeout: cfg.LLMTimeout},
			log,
		)
		if err != nil {
			log.ErrorContext(ctx, "Failed to create Gemini provider so summarization is disabled",
				"error", err,
				"model", cfg.GeminiModel)

			return nil
		}

		log.InfoContext(ctx, "Summarization provider is initialized",
			"provider", cfg.Provider,
			"model", cfg.GeminiModel)

		return provider
	}
}

func initBot(
	ctx context.Context,
	cfg config.Config,
	pipeline *runner.Runner,
	log *slog.Logger,
) *bot.Bot {
	if cfg.TelegramToken == "" {
		return nil
	}

	if cfg.APIKey() == "" {
		log.WarnContext(ctx, "Bot is not started because summarization is disabled",
			"provider", cfg.Provider)

		return nil
	}

	botInst, err := bot.New(cfg.TelegramToken, pipeline, cfg.DefaultMinWords, cfg.DefaultMaxWords, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err)

		return nil
	}

	return botInst
}
