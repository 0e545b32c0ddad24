package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	contextPkg "CalorAI/pkg/context"
	"CalorAI/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func TestRequestIDMiddleware(t *testing.T) {
	m := New(log.Discard())

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(m.NewLoggingMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c) + "|" + contextPkg.GetRequestID(c.UserContext()))
	})

	tests := []struct {
		name   string
		header string
	}{
		{"generated", ""},
		{"propagated", "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDKey, tt.header)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("Test() error = %v", err)
			}

			got := resp.Header.Get(RequestIDKey)
			if got == "" {
				t.Fatal("response is missing the request id header")
			}
			if tt.header != "" && got != tt.header {
				t.Errorf("request id = %q, want %q", got, tt.header)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if want := got + "|" + got; string(body) != want {
				t.Errorf("body = %q, want %q", body, want)
			}
		})
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}

	got := sanitizeRequestBody([]byte(`{"scan_id":"x","comments":"` + string(long) + `"}`))
	if len(got) >= 100 {
		t.Errorf("comments were not truncated: %s", got)
	}

	if got := sanitizeRequestBody([]byte("not json")); got != "[non-JSON body]" {
		t.Errorf("sanitizeRequestBody() = %q", got)
	}
}
