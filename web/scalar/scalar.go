// Package scalar serves the interactive API reference rendered by Scalar.
package scalar

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/pdf-editor/pkg/handlers"
	"github.com/JaimeStill/pdf-editor/pkg/module"
)

//go:embed index.html
var indexHTML string

var index = template.Must(template.New("index").Parse(indexHTML))

// Handler renders the reference page for the OpenAPI document at specURL.
func Handler(specURL string) http.HandlerFunc {
	var buf bytes.Buffer
	if err := index.Execute(&buf, struct{ SpecURL string }{specURL}); err != nil {
		panic(err)
	}
	page := buf.Bytes()

	return func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondBytes(w, "text/html; charset=utf-8", page)
	}
}

// NewModule mounts the reference page at prefix.
func NewModule(prefix, specURL string) *module.Module {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", Handler(specURL))
	return module.New(prefix, mux)
}
