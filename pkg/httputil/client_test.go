package httputil

import (
	"strings"
	"testing"
)

func TestClientsAreSingletons(t *testing.T) {
	if FastClient() != FastClient() {
		t.Error("FastClient should return the same instance")
	}
	if ModelClient() != ModelClient() {
		t.Error("ModelClient should return the same instance")
	}
	if FastClient() == ModelClient() {
		t.Error("fast and model clients should be distinct")
	}
}

func TestReadResponseBodyLimit(t *testing.T) {
	body := strings.NewReader(strings.Repeat("x", 100))

	got, err := ReadResponseBody(body, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("expected 10 bytes, got %d", len(got))
	}
}

func TestReadResponseBodyDefaultLimit(t *testing.T) {
	body := strings.NewReader("small body")
	got, err := ReadResponseBody(body, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "small body" {
		t.Errorf("got %q", got)
	}
}
