package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"academy/pkg/requestcontext"
)

// Device parses the User-Agent header into a short human-readable description
// for audit trails.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		if ua == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestcontext.WithDevice(r.Context(), describeDevice(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func describeDevice(rawUA string) string {
	parsed := useragent.New(rawUA)
	browser, version := parsed.Browser()

	var parts []string
	if browser != "" {
		if version != "" {
			parts = append(parts, fmt.Sprintf("%s %s", browser, version))
		} else {
			parts = append(parts, browser)
		}
	}
	if osInfo := parsed.OS(); osInfo != "" {
		parts = append(parts, osInfo)
	}
	if parsed.Mobile() {
		parts = append(parts, "mobile")
	}
	if parsed.Bot() {
		parts = append(parts, "bot")
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ", ")
}
