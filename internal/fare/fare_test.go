package fare

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestFare(t *testing.T) {
	if got := Fare(10.0, 8); got != 80.0 {
		t.Fatalf("expected 80, got %v", got)
	}
	if got := Fare(0, 8); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestFareKeepsPrecision(t *testing.T) {
	got := Fare(0.0100075, 8)
	if got < 0.08005 || got > 0.08007 {
		t.Fatalf("expected full-precision product, got %v", got)
	}
}

func TestFormatterTwoDecimals(t *testing.T) {
	f := NewFormatter("en")
	if got := f.Format(80.0); got != "80.00" {
		t.Fatalf("unexpected formatted value: %q", got)
	}
	if got := f.Format(12.346); got != "12.35" {
		t.Fatalf("expected rounding to two decimals: %q", got)
	}
}

func TestFormatterBadLocaleFallsBack(t *testing.T) {
	f := NewFormatter("not a locale")
	if got := f.Format(1.5); got != "1.50" {
		t.Fatalf("unexpected formatted value: %q", got)
	}
}

func TestQuoteHandler(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/fare"), NewFormatter("en"))

	body, _ := json.Marshal(QuoteRequest{DistanceKm: 10, RatePerKm: 8})
	req := httptest.NewRequest(http.MethodPost, "/fare/quote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("quote status: %v", err)
	}

	var quote QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if quote.Total != 80 {
		t.Fatalf("expected total 80, got %v", quote.Total)
	}
	if quote.Formatted != "80.00" {
		t.Fatalf("unexpected formatted total: %q", quote.Formatted)
	}
}

func TestQuoteHandlerRejectsNegative(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/fare"), NewFormatter("en"))

	req := httptest.NewRequest(http.MethodPost, "/fare/quote", bytes.NewReader([]byte(`{"distance_km":-1,"rate_per_km":8}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestQuoteHandlerParseError(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/fare"), NewFormatter("en"))

	req := httptest.NewRequest(http.MethodPost, "/fare/quote", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}
