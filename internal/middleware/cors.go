package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

const corsRequestHeadersHeader = "Access-Control-Request-Headers"

var corsMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace,
}

// CORS lets browser front-ends on the given origins call the relay. Any
// method and any requested header are allowed, with credentials. With "*"
// the caller's origin is echoed back, since browsers reject a literal "*"
// on credentialed requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	originOpt := handlers.AllowedOrigins(allowedOrigins)
	if len(allowedOrigins) == 0 || containsWildcard(allowedOrigins) {
		originOpt = handlers.AllowedOriginValidator(func(string) bool { return true })
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := append([]string{"Accept", "Content-Type", "Authorization", RequestIDHeader}, requestedHeaders(r)...)
			handlers.CORS(
				originOpt,
				handlers.AllowedMethods(corsMethods),
				handlers.AllowedHeaders(headers),
				handlers.ExposedHeaders([]string{RequestIDHeader}),
				handlers.AllowCredentials(),
			)(next).ServeHTTP(w, r)
		})
	}
}

// requestedHeaders lists the headers a preflight asks for.
func requestedHeaders(r *http.Request) []string {
	var out []string
	for _, h := range strings.Split(r.Header.Get(corsRequestHeadersHeader), ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
