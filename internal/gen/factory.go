package gen

import (
	"fmt"

	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/gen/gemini"
	"github.com/postpilot/postpilot/internal/gen/mock"
	"github.com/postpilot/postpilot/internal/gen/openai"
	"github.com/postpilot/postpilot/pkg/models"
)

// NewProvider constructs the appropriate content provider based on config.
// Called once at server startup.
func NewProvider(cfg config.GenConfig) (models.ContentProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(cfg.Gemini, cfg.RequestTimeout), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI, cfg.RequestTimeout), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown content provider %q: must be one of gemini, openai, mock", cfg.Provider)
	}
}
