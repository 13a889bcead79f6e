package controllers

import (
	"errors"
	"testing"
	"time"

	"backoffice/models"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	user := models.User{ID: "u-1", TenantID: "t1", Email: "ana@loja.com", Role: models.USER_ROLE_MANAGER}

	token, err := signToken("secret", user, now, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := parseToken("secret", token, func() time.Time { return now.Add(30 * time.Minute) })
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u-1" || claims.TenantID != "t1" || claims.Role != models.USER_ROLE_MANAGER {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := parseToken("other", token, func() time.Time { return now }); err == nil {
		t.Error("expected signature error with the wrong secret")
	}
	if _, err := parseToken("secret", token, func() time.Time { return now.Add(2 * time.Hour) }); !errors.Is(err, errTokenExpired) {
		t.Errorf("expected errTokenExpired, got %v", err)
	}
	if _, err := parseToken("secret", "not.a.token", func() time.Time { return now }); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestNormalizeEvent(t *testing.T) {
	for _, in := range []string{"messages.upsert", "MESSAGES_UPSERT", " Messages.Upsert "} {
		if got := normalizeEvent(in); got != "messages.upsert" {
			t.Errorf("normalizeEvent(%q) = %q", in, got)
		}
	}
}
