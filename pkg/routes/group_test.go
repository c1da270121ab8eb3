package routes_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/pdf-editor/pkg/openapi"
	"github.com/JaimeStill/pdf-editor/pkg/routes"
)

func write(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func sampleGroup() routes.Group {
	return routes.Group{
		Prefix: "/pdf-editor",
		Tags:   []string{"Editor"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/load", Handler: write("load"), OpenAPI: &openapi.Operation{Summary: "Load"}},
			{Method: "GET", Pattern: "/sessions", Handler: write("sessions"), OpenAPI: &openapi.Operation{Summary: "List", Tags: []string{"Admin"}}},
			{Method: "GET", Pattern: "/internal", Handler: write("internal")},
		},
		Children: []routes.Group{
			{
				Prefix: "/session",
				Tags:   []string{"Sessions"},
				Routes: []routes.Route{
					{Method: "DELETE", Pattern: "", Handler: write("delete"), OpenAPI: &openapi.Operation{Summary: "Delete"}},
				},
			},
		},
		Schemas: map[string]*openapi.Schema{
			"Session": {Type: "object"},
		},
	}
}

func TestGroup_AddToSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")
	group := sampleGroup()

	group.AddToSpec("/api", spec)

	load := spec.Paths["/api/pdf-editor/load"]
	if load == nil || load.Post == nil {
		t.Fatal("POST /api/pdf-editor/load not added")
	}
	if len(load.Post.Tags) != 1 || load.Post.Tags[0] != "Editor" {
		t.Errorf("inherited tags = %v, want [Editor]", load.Post.Tags)
	}

	sessions := spec.Paths["/api/pdf-editor/sessions"]
	if sessions == nil || sessions.Get.Tags[0] != "Admin" {
		t.Error("explicit tags not preserved")
	}

	if _, ok := spec.Paths["/api/pdf-editor/internal"]; ok {
		t.Error("route without OpenAPI operation should not be documented")
	}

	child := spec.Paths["/api/pdf-editor/session"]
	if child == nil || child.Delete == nil {
		t.Fatal("child group operation not added")
	}
	if child.Delete.Tags[0] != "Sessions" {
		t.Errorf("child tags = %v, want [Sessions]", child.Delete.Tags)
	}

	if _, ok := spec.Components.Schemas["Session"]; !ok {
		t.Error("group schemas not added to components")
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	spec := openapi.NewSpec("Test API", "1.0.0")

	routes.Register(mux, "/api", spec, sampleGroup())

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"POST", "/pdf-editor/load", "load"},
		{"GET", "/pdf-editor/sessions", "sessions"},
		{"GET", "/pdf-editor/internal", "internal"},
		{"DELETE", "/pdf-editor/session", "delete"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			body, _ := io.ReadAll(w.Result().Body)
			if string(body) != tt.want {
				t.Errorf("body = %q, want %q", body, tt.want)
			}
		})
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/pdf-editor/load", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
