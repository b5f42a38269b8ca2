package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desy0305/e-KanBan2clicks/internal/metrics"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestSecurityMiddleware() (*SecurityMiddleware, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := security.NewLogger()
	logger.SetOutput(&buf)
	return NewSecurityMiddleware(logger, security.DefaultSecurityConfig()), &buf
}

// TestSecureHeaders tests that security headers are set correctly.
func TestSecureHeaders(t *testing.T) {
	app := fiber.New()
	sm, _ := newTestSecurityMiddleware()

	app.Use(sm.SecureHeaders())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	headers := map[string]string{
		"Content-Security-Policy": "default-src 'self'",
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
	}

	for header, expectedValue := range headers {
		actual := resp.Header.Get(header)
		if !strings.Contains(actual, expectedValue) {
			t.Errorf("Header %s: expected to contain %q, got %q", header, expectedValue, actual)
		}
	}

	if hsts := resp.Header.Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("HSTS should only be sent when cookies are secure, got %q", hsts)
	}
}

// TestSecureHeaders_HSTS tests that HSTS is sent when the deployment is HTTPS-only.
func TestSecureHeaders_HSTS(t *testing.T) {
	app := fiber.New()
	config := security.DefaultSecurityConfig()
	config.SessionSecure = true
	sm := NewSecurityMiddleware(security.NewLogger(), config)

	app.Use(sm.SecureHeaders())
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if !strings.Contains(resp.Header.Get("Strict-Transport-Security"), "max-age=31536000") {
		t.Error("Expected HSTS header")
	}
}

// TestRequestID tests generated and propagated request ids.
func TestRequestID(t *testing.T) {
	app := fiber.New()
	sm, _ := newTestSecurityMiddleware()

	var seen string
	app.Use(sm.RequestID())
	app.Get("/test", func(c *fiber.Ctx) error {
		seen = RequestIDFrom(c)
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	generated := resp.Header.Get(HeaderRequestID)
	if len(generated) != 36 {
		t.Errorf("Expected a UUID request id, got %q", generated)
	}
	if seen != generated {
		t.Errorf("Handler saw %q, response carried %q", seen, generated)
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderRequestID, "client-supplied")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if got := resp.Header.Get(HeaderRequestID); got != "client-supplied" {
		t.Errorf("Expected client request id to be kept, got %q", got)
	}
}

// TestRequestLogger tests HTTP request logging.
func TestRequestLogger(t *testing.T) {
	app := fiber.New()
	sm, buf := newTestSecurityMiddleware()

	app.Use(sm.RequestID())
	app.Use(sm.RequestLogger())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).SendString("created")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("Expected 201 Created, got %d", resp.StatusCode)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log entry, got %q: %v", buf.String(), err)
	}
	if entry["path"] != "/test" || entry["status"] != float64(201) {
		t.Errorf("Unexpected log entry: %v", entry)
	}
	if entry["request_id"] != resp.Header.Get(HeaderRequestID) {
		t.Errorf("Log entry request_id %v does not match header", entry["request_id"])
	}
}

// TestRequestLogger_HandlerError tests that errors are rendered before logging.
func TestRequestLogger_HandlerError(t *testing.T) {
	app := fiber.New()
	sm, buf := newTestSecurityMiddleware()

	app.Use(sm.RequestLogger())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(buf.String(), `"status":500`) {
		t.Errorf("Expected logged status 500, got %q", buf.String())
	}
}

// TestMetrics tests that requests are counted by route template.
func TestMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Delete("/api/cards/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues("DELETE", "/api/cards/:id", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		resp, err := app.Test(httptest.NewRequest("DELETE", "/api/cards/"+id, nil))
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
	}

	if got := testutil.ToFloat64(counter); got != before+3 {
		t.Errorf("Expected 3 requests under the route template, got %v", got-before)
	}
}

// BenchmarkSecureHeaders benchmarks security headers middleware.
func BenchmarkSecureHeaders(b *testing.B) {
	app := fiber.New()
	sm := NewSecurityMiddleware(security.NewLogger(), security.DefaultSecurityConfig())

	app.Use(sm.SecureHeaders())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		_, _ = app.Test(req)
	}
}
