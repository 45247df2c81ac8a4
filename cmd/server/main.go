package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/yklab/tutor-platform/internal/ai"
	"github.com/yklab/tutor-platform/internal/config"
	"github.com/yklab/tutor-platform/internal/db"
	"github.com/yklab/tutor-platform/internal/httpapi"
	"github.com/yklab/tutor-platform/internal/store/rabbitmq"
	"github.com/yklab/tutor-platform/internal/store/redisstore"
	"github.com/yklab/tutor-platform/internal/tutoring"
)

// newProviderRegistry wires every supported model backend; which one serves
// requests is picked by AI_PROVIDER.
func newProviderRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})

	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	return reg
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	db.Migrate(gdb)

	provider, err := newProviderRegistry(cfg).Get(context.Background(), cfg.AIProvider, "")
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}

	var cache tutoring.PerformanceCache
	if cfg.RedisAddr != "" {
		cache = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.PerfCacheTTL)
	}

	var rabbit *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			// async generation degrades gracefully; sync endpoints still work
			log.Printf("rabbit publisher unavailable, async generation disabled: %v", err)
			rabbit = nil
		} else {
			defer rabbit.Close()
		}
	}

	repo := tutoring.NewRepo(gdb)
	tracker := tutoring.NewTracker(repo)
	generator := tutoring.NewGenerator(repo, provider, tracker, cfg.GenerationMaxTokens, cfg.ChatContextWindowSize)
	svc := tutoring.NewService(repo, provider, tutoring.NewMarkerClassifier(), tracker, generator, cache, cfg.TutorSystemPrompt, cfg.TutorMaxTokens)

	r := httpapi.NewRouter(cfg, svc, repo, rabbit)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("server listening addr=%s provider=%s", addr, cfg.AIProvider)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
