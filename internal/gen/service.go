package gen

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/postpilot/postpilot/internal/cache"
	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/pkg/models"
)

// job pairs one (topic, variant) combination with the prompt and temperature
// it will be generated with. Temperature is drawn while jobs are built, so
// the random source is only touched sequentially.
type job struct {
	topic       string
	variant     int
	prompt      string
	temperature float64
}

// Service orchestrates the generation fan-out: one provider call per
// (topic, variant) pair, all dispatched concurrently, every job settling
// into exactly one candidate regardless of individual failures.
type Service struct {
	provider models.ContentProvider
	cache    cache.Cache
	cfg      config.GenConfig
	rng      *rand.Rand
}

// NewService creates a generation Service. The rand source is injected so
// temperature jitter is reproducible in tests.
func NewService(provider models.ContentProvider, c cache.Cache, cfg config.GenConfig, rng *rand.Rand) *Service {
	return &Service{
		provider: provider,
		cache:    c,
		cfg:      cfg,
		rng:      rng,
	}
}

// Generate turns a raw prompt into one ContentCandidate per (topic, variant)
// pair. Results are ordered by job index: all variants of the first topic,
// then the second, and so on. Individual job failures never abort the
// batch; they surface as placeholder candidates.
func (s *Service) Generate(ctx context.Context, prompt, platform string) ([]models.ContentCandidate, error) {
	key := cache.BatchKey(batchHash(platform, prompt))
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var batch []models.ContentCandidate
		if err := json.Unmarshal(cached, &batch); err == nil {
			return batch, nil
		}
	}

	topics := ExtractTopics(prompt)

	jobs := make([]job, 0, len(topics)*s.cfg.VariantsPerTopic)
	for _, topic := range topics {
		for v := 1; v <= s.cfg.VariantsPerTopic; v++ {
			jobs = append(jobs, job{
				topic:       topic,
				variant:     v,
				prompt:      buildPrompt(platform, topic, v),
				temperature: s.cfg.TempBase + s.rng.Float64()*s.cfg.TempJitter,
			})
		}
	}
	if len(jobs) > s.cfg.MaxJobs {
		return nil, models.NewValidationError("prompt",
			fmt.Sprintf("prompt expands to %d generation jobs, maximum is %d", len(jobs), s.cfg.MaxJobs))
	}

	// Results are written by job index, never by completion order.
	results := make([]models.ContentCandidate, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = s.runJob(gctx, j)
			return nil
		})
	}
	// Jobs never return errors; every failure settles into a placeholder.
	_ = g.Wait()

	if payload, err := json.Marshal(results); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
			slog.Warn("caching generation batch failed", "error", err)
		}
	}

	return results, nil
}

// runJob executes one provider call under the per-job timeout and
// normalizes whatever came back.
func (s *Service) runJob(ctx context.Context, j job) models.ContentCandidate {
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	raw, err := s.provider.Generate(jobCtx, models.GenerationRequest{
		Prompt:      j.prompt,
		Temperature: j.temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		slog.Warn("generation job failed",
			"topic", j.topic, "variant", j.variant, "error", err)
	}
	return normalize(j.topic, j.variant, raw, err)
}

// VariantsPerTopic reports how many drafts the service produces per topic.
func (s *Service) VariantsPerTopic() int {
	return s.cfg.VariantsPerTopic
}

func batchHash(platform, prompt string) string {
	sum := sha256.Sum256([]byte(platform + "\x00" + prompt))
	return fmt.Sprintf("%x", sum)
}
