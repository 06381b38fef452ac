package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/expiry"
	"github.com/serroba/shortlink/internal/logging"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// Shortener is the create and redirect behavior the HTTP layer depends on.
type Shortener interface {
	Create(ctx context.Context, targetURL, identifier string) (*shortener.Shortlink, error)
	Resolve(ctx context.Context, code string) (*shortener.Shortlink, error)
}

// ShortlinkHandler handles shortlink operations.
type ShortlinkHandler struct {
	service        Shortener
	baseURL        string
	publishCreated messaging.Publish[expiry.ShortlinkCreatedEvent]
}

// NewShortlinkHandler creates a new shortlink handler. baseURL must not end in a slash.
func NewShortlinkHandler(
	service Shortener,
	baseURL string,
	publishCreated messaging.Publish[expiry.ShortlinkCreatedEvent],
) *ShortlinkHandler {
	return &ShortlinkHandler{
		service:        service,
		baseURL:        baseURL,
		publishCreated: publishCreated,
	}
}

func (h *ShortlinkHandler) CreateShortlink(ctx context.Context, req *CreateShortlinkRequest) (*CreateShortlinkResponse, error) {
	logger := logging.FromContext(ctx)

	link, err := h.service.Create(ctx, req.Body.URL, req.Body.Identifier)
	if err != nil {
		var exhausted *shortener.RetryBudgetExhaustedError

		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, huma.Error400BadRequest("url must not be empty")
		case errors.As(err, &exhausted):
			return nil, huma.Error409Conflict(fmt.Sprintf(
				"no free short code after %d attempts; retry with a distinct identifier", exhausted.Attempts))
		case errors.Is(err, shortener.ErrDuplicateCode):
			return nil, huma.Error409Conflict("short code was taken concurrently; retry with a distinct identifier")
		default:
			logger.Error("failed to create shortlink", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create shortlink", err)
		}
	}

	event := &expiry.ShortlinkCreatedEvent{
		Code:      string(link.Code),
		CreatedAt: link.CreatedAt,
		ExpireAt:  link.ExpiresAt,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		logger.Error("failed to publish shortlink created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	public := h.baseURL + "/" + string(link.Code)

	logger.Info("shortlink created", zap.String("code", string(link.Code)))

	resp := &CreateShortlinkResponse{Location: public}
	resp.Body.Shortlink = public
	resp.Body.ExpireAt = link.ExpiresAt.UTC().Format(time.RFC3339)

	return resp, nil
}

func (h *ShortlinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.service.Resolve(ctx, req.Code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("Shortlink not found")
		}

		logging.FromContext(ctx).Error("failed to resolve shortlink", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to resolve shortlink", err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.TargetURL,
	}, nil
}
