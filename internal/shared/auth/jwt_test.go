package auth

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	manager := NewManager("unit-secret", time.Hour)

	token, err := manager.Sign("sub-1", "a@b.c", "A")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "sub-1" || claims.Email != "a@b.c" || claims.DisplayName != "A" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestNewManagerWarnsOnMissingSecret(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	manager := NewManager("  ", time.Hour)
	if !strings.Contains(buf.String(), "JWT_SECRET") {
		t.Fatalf("expected a warning about the missing secret, got %q", buf.String())
	}

	// The fallback still yields a working manager for dev use.
	token, err := manager.Sign("sub-1", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	buf.Reset()
	NewManager("real-secret", time.Hour)
	if buf.Len() != 0 {
		t.Fatalf("configured secret must not warn, got %q", buf.String())
	}
}

func TestSignRequiresSubject(t *testing.T) {
	manager := NewManager("unit-secret", time.Hour)
	if _, err := manager.Sign("  ", "", ""); err == nil {
		t.Fatalf("expected error for blank subject")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Sign("sub-1", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewManager("unit-secret", time.Millisecond)
	token, err := manager.Sign("sub-1", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := NewManager("unit-secret", time.Hour)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
