package otel

import (
	"context"
	"testing"
)

func TestNewProvidersEmptyEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "fintrack-auth", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil {
		t.Fatal("expected a no-op TracerProvider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestNewProvidersInvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "http://", "fintrack-auth", false); err == nil {
		t.Fatal("endpoint without host should fail")
	}
}

func TestNewProvidersNormalizesEndpoint(t *testing.T) {
	// A bare host:port with a path still dials host:port; construction does
	// not connect, so this succeeds without a collector.
	p, err := NewProviders(context.Background(), "localhost:4317/v1/traces", "fintrack-auth", true)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	defer p.Shutdown(context.Background())
	if p.TracerProvider == nil {
		t.Fatal("expected a TracerProvider")
	}
	p.SetGlobal()
}
