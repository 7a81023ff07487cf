package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{SecretKey: "test-secret", TTL: DefaultTokenTTL, Issuer: "test"}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, expiresAt, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if want := issued.Add(7 * 24 * time.Hour); !expiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, want)
	}

	subject, exp, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if subject != "user-123" {
		t.Errorf("subject = %q, want user-123", subject)
	}
	if !exp.Equal(expiresAt) {
		t.Errorf("exp = %v, want %v", exp, expiresAt)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager(testJWTConfig())
	m.now = func() time.Time { return issued }
	valid, _, err := m.Generate("user-123")
	if err != nil {
		t.Fatal(err)
	}

	other := NewJWTManager(JWTConfig{SecretKey: "another-secret", TTL: time.Hour})
	forged, _, err := other.Generate("user-123")
	if err != nil {
		t.Fatal(err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-123",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr error
	}{
		{"expired", valid, issued.Add(8 * 24 * time.Hour), ErrExpiredToken},
		{"wrong secret", forged, issued, ErrInvalidToken},
		{"missing subject", noSubject, issued, ErrInvalidToken},
		{"missing expiry", noExpiry, issued, ErrInvalidToken},
		{"alg none", unsigned, issued, ErrInvalidToken},
		{"garbage", "not.a.token", issued, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			m.now = func() time.Time { return at }
			_, _, err := m.Validate(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
