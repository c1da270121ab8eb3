// Package api assembles the domain systems behind the /api module.
package api

import (
	"net/http"

	"github.com/JaimeStill/pdf-editor/internal/config"
	"github.com/JaimeStill/pdf-editor/internal/infrastructure"
	"github.com/JaimeStill/pdf-editor/pkg/middleware"
	"github.com/JaimeStill/pdf-editor/pkg/module"
	"github.com/JaimeStill/pdf-editor/pkg/openapi"
)

// NewModule builds the API module and registers its long-running systems
// with the infrastructure lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(infra)

	domain, err := NewDomain(runtime, cfg)
	if err != nil {
		return nil, err
	}
	if err := domain.Start(runtime); err != nil {
		return nil, err
	}

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.Domain)

	mux := http.NewServeMux()
	registerRoutes(mux, spec, runtime, domain, cfg)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
