package handlers

import "github.com/serroba/shortlink/internal/config"

// CreateShortlinkRequest is the request body for creating a shortlink.
type CreateShortlinkRequest struct {
	Body struct {
		URL        string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url"`
		Identifier string `doc:"Optional caller identifier mixed into the code" example:"user-42" json:"identifier,omitempty" required:"false"`
	}
}

// CreateShortlinkResponse is the response for a successfully created shortlink.
type CreateShortlinkResponse struct {
	Location string `doc:"The public shortlink" header:"Location"`
	Body     struct {
		Shortlink string `doc:"The public shortlink"          example:"http://localhost:8080/6JvlOnj0" json:"shortlink"`
		ExpireAt  string `doc:"Expiry time in RFC 3339 format" example:"2025-01-11T12:00:00Z"            json:"expire_at"`
	}
}

// RedirectRequest is the request for following a shortlink.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"6JvlOnj0" path:"code"`
}

// RedirectResponse is the response for a redirect.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ConfigResponse exposes the active configuration with credentials masked.
type ConfigResponse struct {
	Body config.Options
}
