package providers

import (
	"context"
	"strings"
	"testing"

	"github.com/skybridge/skybridge/pkg/cloud"
	"github.com/skybridge/skybridge/pkg/config"
	"github.com/skybridge/skybridge/pkg/telemetry"
)

func stubFactory(_ context.Context, _ *config.Config, _ *telemetry.Telemetry) (cloud.Provider, error) {
	return nil, nil
}

func TestRegisterAndNew(t *testing.T) {
	if err := Register("test-stub", stubFactory); err != nil {
		t.Fatalf("Expected registration to succeed, got: %v", err)
	}

	if _, err := New(context.Background(), "test-stub", config.Default(), nil); err != nil {
		t.Errorf("Expected New to find the factory, got: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	if err := Register("test-dup", stubFactory); err != nil {
		t.Fatalf("Expected first registration to succeed, got: %v", err)
	}
	err := Register("test-dup", stubFactory)
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("Expected duplicate registration error, got: %v", err)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	if err := Register("", stubFactory); err == nil {
		t.Fatal("Expected an error for an empty provider name")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "no-such-provider", config.Default(), nil)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Expected a not-found error, got: %v", err)
	}
}

func TestListIsSorted(t *testing.T) {
	_ = Register("test-zz", stubFactory)
	_ = Register("test-aa", stubFactory)

	names := List()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Expected sorted names, got %v", names)
		}
	}
}
