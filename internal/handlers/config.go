package handlers

import (
	"context"

	"github.com/serroba/shortlink/internal/config"
)

// ConfigHandler serves the active configuration.
type ConfigHandler struct {
	options *config.Options
}

func NewConfigHandler(options *config.Options) *ConfigHandler {
	return &ConfigHandler{options: options}
}

// GetConfig returns the configuration with connection passwords masked.
func (h *ConfigHandler) GetConfig(_ context.Context, _ *struct{}) (*ConfigResponse, error) {
	return &ConfigResponse{Body: h.options.Masked()}, nil
}
