package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if got := cfg.Commerce.RPCTimeout; got != 15*time.Second {
		t.Fatalf("expected default rpc timeout 15s, got %v", got)
	}

	if got := cfg.Commerce.MaxBodyBytes; got != 1048576 {
		t.Fatalf("expected default body ceiling 1MiB, got %d", got)
	}

	if got := cfg.Session.CookieName; got != "tooly_session" {
		t.Fatalf("unexpected session cookie name %q", got)
	}

	if got := cfg.Payment.NormalizedProvider(); got != PaymentProviderTest {
		t.Fatalf("expected default payment provider test, got %q", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("TOOLY_COMMERCE_ENDPOINT_URL"); err != nil {
		t.Fatalf("failed to unset endpoint url: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_StripeProviderRequiresAPIKey(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("TOOLY_PAYMENT_PROVIDER", "stripe")

	if _, err := Load(); err == nil {
		t.Fatal("expected stripe provider without api key to fail")
	}

	t.Setenv("TOOLY_STRIPE_API_KEY", "sk_test_123")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if got := cfg.Payment.NormalizedProvider(); got != PaymentProviderStripe {
		t.Fatalf("expected stripe provider, got %q", got)
	}
}

func TestLoad_UnknownProviderRejected(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("TOOLY_PAYMENT_PROVIDER", "paypal")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown payment provider to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("TOOLY_APP_ENV", "prod")
	t.Setenv("TOOLY_APP_PORT", "8081")
	t.Setenv("TOOLY_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TOOLY_COMMERCE_ENDPOINT_URL", "https://commerce.internal/shop-api")
	t.Setenv("TOOLY_PAYMENT_PROVIDER", "")
	t.Setenv("TOOLY_STRIPE_API_KEY", "")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
