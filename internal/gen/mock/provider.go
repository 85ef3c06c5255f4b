// Package mock provides a scripted models.ContentProvider for testing and
// local development without a real model behind it.
package mock

import (
	"context"
	"fmt"

	"github.com/postpilot/postpilot/pkg/models"
)

// Provider satisfies models.ContentProvider for testing.
type Provider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, req models.GenerationRequest) (string, error)
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// NewProvider returns a Provider that answers every prompt with a valid
// candidate payload.
func NewProvider() *Provider {
	return &Provider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.GenerationRequest) (string, error) {
			return fmt.Sprintf(`{"text":"Mock caption (temperature %.2f).","hashtags":"#mock #testing","mediaDescription":"A mock image"}`,
				req.Temperature), nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.GenerationRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a Provider that blocks until context is cancelled.
func NewTimeoutProvider() *Provider {
	return &Provider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ models.GenerationRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// Compile-time check that Provider implements ContentProvider.
var _ models.ContentProvider = (*Provider)(nil)
