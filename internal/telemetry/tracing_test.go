package telemetry

import (
	"context"
	"testing"
)

func TestSetup(t *testing.T) {
	t.Parallel()

	t.Run("no_endpoint_is_disabled", func(t *testing.T) {
		t.Parallel()

		provider, err := Setup(context.Background(), Options{})
		if err != nil {
			t.Fatalf("Setup returned error: %v", err)
		}
		if provider.Enabled() {
			t.Fatalf("expected tracing to stay disabled")
		}
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown returned error: %v", err)
		}
	})

	t.Run("nil_provider_shutdown", func(t *testing.T) {
		t.Parallel()

		var provider *Provider
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Fatalf("expected nil provider shutdown to succeed, got %v", err)
		}
	})
}
