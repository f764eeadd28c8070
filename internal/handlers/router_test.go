package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRouterNotFoundReturnsJSON(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["error"] != errorNotFoundCode {
		t.Fatalf("expected %s, got %v", errorNotFoundCode, body["error"])
	}
}

func TestRouterUnconfiguredGroupIsNotImplemented(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rr.Code)
	}
}

func TestHealthHandlersHealthz(t *testing.T) {
	start := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	now := start.Add(45 * time.Second)
	handlers := NewHealthHandlers(
		WithHealthStartedAt(start),
		WithHealthClock(func() time.Time { return now }),
	)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handlers.Healthz(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
	if body["uptime"] != "45s" {
		t.Fatalf("expected uptime 45s, got %v", body["uptime"])
	}
}

func TestHealthHandlersReadyzReportsFailingCheck(t *testing.T) {
	handlers := NewHealthHandlers(
		WithReadinessCheck("cart_slot", func(context.Context) error {
			return errors.New("slot directory missing")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	handlers.Readyz(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Status != "degraded" {
		t.Fatalf("expected degraded, got %s", body.Status)
	}
	if body.Checks["cart_slot"].Status != "failing" {
		t.Fatalf("expected failing check, got %+v", body.Checks)
	}
}
