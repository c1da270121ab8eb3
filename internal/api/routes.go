package api

import (
	"net/http"

	"github.com/JaimeStill/pdf-editor/internal/config"
	"github.com/JaimeStill/pdf-editor/internal/documents"
	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/pkg/openapi"
	"github.com/JaimeStill/pdf-editor/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	spec *openapi.Spec,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) {
	maxUpload := cfg.Storage.MaxUploadSizeBytes()

	editorHandler := editor.NewHandler(domain.Editor, domain.Images, runtime.Logger, maxUpload)
	documentsHandler := documents.NewHandler(domain.Documents, runtime.Logger, maxUpload)

	routes.Register(
		mux,
		cfg.API.BasePath,
		spec,
		editorHandler.Routes(),
		documentsHandler.Routes(),
	)
}
