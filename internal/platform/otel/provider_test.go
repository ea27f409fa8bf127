package otel_test

import (
	"context"
	"testing"

	"github.com/urbanhaven/storefront/internal/platform/otel"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("STOREFRONT_OTEL_ENDPOINT", "")
	t.Setenv("STOREFRONT_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	t.Setenv("STOREFRONT_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("STOREFRONT_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}
