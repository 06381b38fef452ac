package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the shortlink and config routes.
func RegisterRoutes(api huma.API, shortlinks *ShortlinkHandler, cfg *ConfigHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-shortlink",
		Method:        http.MethodPost,
		Path:          "/shortlink",
		Summary:       "Create shortlink",
		Description:   "Creates a short code for the URL that stays valid for the configured number of days.",
		Tags:          []string{"Shortlinks"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError},
	}, shortlinks.CreateShortlink)

	huma.Register(api, huma.Operation{
		OperationID: "get-config",
		Method:      http.MethodGet,
		Path:        "/config",
		Summary:     "Show configuration",
		Tags:        []string{"Operations"},
	}, cfg.GetConfig)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Follow shortlink",
		Description: "Redirects to the target URL of a live shortlink.",
		Tags:        []string{"Shortlinks"},
		Errors:      []int{http.StatusNotFound},
	}, shortlinks.Redirect)
}
