package principal

import (
	"context"
	"testing"
)

func TestWithPrincipalAndFromContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithPrincipal(ctx, Principal{UserID: "u-123", Email: "doc@clinic.example", Role: RoleDoctor})

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatalf("expected principal to be present")
	}
	if got.UserID != "u-123" || got.Role != RoleDoctor {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestFromContext_EmptyOrMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Fatalf("expected missing principal to return false")
	}

	ctx = context.WithValue(ctx, principalKey, "not-a-principal")
	if _, ok := FromContext(ctx); ok {
		t.Fatalf("expected non-principal value to return false")
	}

	ctx = WithPrincipal(context.Background(), Principal{})
	if _, ok := FromContext(ctx); ok {
		t.Fatalf("expected empty principal to return false")
	}
}
