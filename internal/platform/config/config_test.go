package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Pricing.TaxRate != 0.07 {
		t.Fatalf("expected default tax rate 0.07, got %v", cfg.Pricing.TaxRate)
	}
	if cfg.Pricing.FreeShippingThreshold != 10000 {
		t.Fatalf("expected default threshold 10000, got %d", cfg.Pricing.FreeShippingThreshold)
	}
	if cfg.Pricing.ShippingFlatCost != 1000 {
		t.Fatalf("expected default shipping cost 1000, got %d", cfg.Pricing.ShippingFlatCost)
	}
	if cfg.Checkout.AckDelay != 1500*time.Millisecond {
		t.Fatalf("expected default ack delay 1.5s, got %v", cfg.Checkout.AckDelay)
	}
	if cfg.Persistence.CartSlotFile != "data/cart.json" {
		t.Fatalf("expected default cart slot, got %q", cfg.Persistence.CartSlotFile)
	}
	if cfg.Idempotency.Header != "Idempotency-Key" {
		t.Fatalf("expected default idempotency header, got %q", cfg.Idempotency.Header)
	}
}

func TestLoadEnvMapOverrides(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"SHOP_SERVER_PORT":                     "9090",
			"SHOP_PRICING_TAX_RATE":                "0.1",
			"SHOP_PRICING_FREE_SHIPPING_THRESHOLD": "5000",
			"SHOP_CHECKOUT_ACK_DELAY":              "250ms",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Pricing.TaxRate != 0.1 {
		t.Fatalf("expected tax rate 0.1, got %v", cfg.Pricing.TaxRate)
	}
	if cfg.Pricing.FreeShippingThreshold != 5000 {
		t.Fatalf("expected threshold 5000, got %d", cfg.Pricing.FreeShippingThreshold)
	}
	if cfg.Checkout.AckDelay != 250*time.Millisecond {
		t.Fatalf("expected ack delay 250ms, got %v", cfg.Checkout.AckDelay)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# local overrides\nexport SHOP_SERVER_PORT=7070\nSHOP_CART_SLOT_FILE=\"/tmp/cart.json\"\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error writing env file: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Fatalf("expected port 7070 from env file, got %q", cfg.Server.Port)
	}
	if cfg.Persistence.CartSlotFile != "/tmp/cart.json" {
		t.Fatalf("expected unquoted slot path, got %q", cfg.Persistence.CartSlotFile)
	}
}

func TestLoadEnvMapTakesPrecedenceOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SHOP_SERVER_PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("unexpected error writing env file: %v", err)
	}

	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(envFile),
		WithEnvMap(map[string]string{"SHOP_SERVER_PORT": "6060"}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "6060" {
		t.Fatalf("expected env map to win, got %q", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidTaxRate(t *testing.T) {
	_, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{"SHOP_PRICING_TAX_RATE": "1.5"}),
	)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validationErr.Fields()
	if len(fields) != 1 || fields[0] != "Pricing.TaxRate" {
		t.Fatalf("expected Pricing.TaxRate flagged, got %v", fields)
	}
}

func TestLoadIgnoresUnparseableDurations(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{"SHOP_CHECKOUT_ACK_DELAY": "not-a-duration"}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Checkout.AckDelay != 1500*time.Millisecond {
		t.Fatalf("expected fallback to default ack delay, got %v", cfg.Checkout.AckDelay)
	}
}
