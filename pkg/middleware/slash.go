package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash returns middleware that removes a trailing slash. GET and HEAD
// requests are redirected to the canonical path. Other methods are rewritten
// in place so multipart and JSON bodies are not lost to a redirect.
// The root path "/" is preserved.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
				target := strings.TrimRight(r.URL.Path, "/")
				if target == "" {
					target = "/"
				}

				if isRead(r) {
					http.Redirect(w, r, withQuery(target, r.URL.RawQuery), http.StatusMovedPermanently)
					return
				}

				r.URL.Path = target
				r.URL.RawPath = ""
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isRead(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
