package devauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/ports"
)

func TestProvider_LoginAndMe(t *testing.T) {
	prov, err := NewProvider(Config{Role: "Venue", Plan: "pro"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	res, err := prov.Login(context.Background(), ports.Credentials{Email: "dev@example.com", Password: "anything"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if len(res.Token) != 32 {
		t.Fatalf("unexpected token length %d", len(res.Token))
	}
	if res.User.UserType != "venue" || res.User.SubscriptionPlan != "pro" || res.User.Email != "dev@example.com" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	me, err := prov.Me(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("Me error: %v", err)
	}
	if me.ID != "dev-venue" {
		t.Fatalf("unexpected id %q", me.ID)
	}
}

func TestProvider_RejectsEmptyPassword(t *testing.T) {
	prov, err := NewProvider(Config{Role: "artist"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	_, err = prov.Login(context.Background(), ports.Credentials{Email: "dev@example.com"})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.FieldErrors()["password"] == "" {
		t.Fatalf("expected password field error, got %v", err)
	}
}

func TestProvider_UnknownTokenIsUnauthorized(t *testing.T) {
	prov, err := NewProvider(Config{Role: "artist"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	_, err = prov.Me(context.Background(), "nope")
	if !apierror.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestNewProvider_UnknownRole(t *testing.T) {
	if _, err := NewProvider(Config{Role: "fan"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
