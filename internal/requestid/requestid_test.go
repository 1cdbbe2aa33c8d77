package requestid_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ErlanBelekov/diary-service/internal/requestid"
	"github.com/google/uuid"
)

func TestNew_IsUUID(t *testing.T) {
	if _, err := uuid.Parse(requestid.New()); err != nil {
		t.Fatalf("New() is not a UUID: %v", err)
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"":                       false,
		"abc-123":                true,
		requestid.New():          true,
		"has space":              false,
		"line\nbreak":            false,
		strings.Repeat("a", 129): false,
		strings.Repeat("a", 128): true,
	}
	for id, want := range cases {
		if got := requestid.Valid(id); got != want {
			t.Errorf("Valid(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := requestid.WithRequestID(context.Background(), "req-9")
	if got := requestid.FromContext(ctx); got != "req-9" {
		t.Errorf("FromContext = %q, want req-9", got)
	}
	if got := requestid.FromContext(context.Background()); got != "" {
		t.Errorf("FromContext(empty) = %q, want empty", got)
	}
}
