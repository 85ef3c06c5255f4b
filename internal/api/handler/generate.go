// Package handler contains the HTTP handlers for the PostPilot API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/postpilot/postpilot/internal/api/response"
	"github.com/postpilot/postpilot/pkg/models"
)

// Generator defines the interface the generate handler depends on.
type Generator interface {
	Generate(ctx context.Context, prompt, platform string) ([]models.ContentCandidate, error)
}

// NewGenerateHandler returns an http.HandlerFunc for POST /api/v1/generate-content.
// The response is always one candidate per (topic, variant) job; individual
// generation failures appear as inline placeholder candidates, not as errors.
func NewGenerateHandler(svc Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt   string `json:"prompt"`
			Platform string `json:"platform"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Prompt) == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "prompt is required", nil)
			return
		}
		if strings.TrimSpace(req.Platform) == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "platform is required", nil)
			return
		}

		candidates, err := svc.Generate(r.Context(), req.Prompt, req.Platform)
		if err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(),
					map[string]string{"field": ve.Field})
				return
			}
			response.Error(w, http.StatusInternalServerError, "GENERATION_ERROR",
				"Failed to generate content: "+err.Error(), nil)
			return
		}

		response.JSON(w, candidates)
	}
}
