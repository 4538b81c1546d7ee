package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"academy/pkg/requestcontext"
)

func captureDevice(t *testing.T, userAgent string) string {
	t.Helper()
	var got string
	handler := Device(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.Device(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func Test_DeviceParsesBrowserAndOS(t *testing.T) {
	got := captureDevice(t, "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Contains(t, got, "Chrome")
	assert.Contains(t, got, "Windows")
}

func Test_DeviceFlagsMobile(t *testing.T) {
	got := captureDevice(t, "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	assert.Contains(t, got, "mobile")
}

func Test_DeviceMissingHeader(t *testing.T) {
	got := captureDevice(t, "")
	assert.Empty(t, got, "no header means no device in context")
}
