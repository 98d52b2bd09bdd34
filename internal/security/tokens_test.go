package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_IssuePair(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	pair, err := p.IssuePair("u1", "s1", "user")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair has empty tokens")
	}
	if pair.AccessJTI == "" || pair.RefreshJTI == "" {
		t.Fatal("token pair has empty jtis")
	}
	if pair.AccessJTI == pair.RefreshJTI {
		t.Fatal("access and refresh jtis must differ")
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Error("refresh token should outlive the access token")
	}

	claims, err := p.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "u1" || claims.SessionID != "s1" || claims.Role != "user" {
		t.Errorf("access claims: got sub=%q session=%q role=%q", claims.Subject, claims.SessionID, claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("access token_type: got %q", claims.TokenType)
	}

	rc, err := p.ValidateRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if rc.ID != pair.RefreshJTI {
		t.Errorf("refresh jti: want %q, got %q", pair.RefreshJTI, rc.ID)
	}
}

func TestTokenProvider_WrongType(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	pair, err := p.IssuePair("u1", "s1", "user")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := p.ValidateAccess(pair.RefreshToken); !errors.Is(err, ErrTokenWrongType) {
		t.Errorf("refresh-as-access: want ErrTokenWrongType, got %v", err)
	}
	if _, err := p.ValidateRefresh(pair.AccessToken); !errors.Is(err, ErrTokenWrongType) {
		t.Errorf("access-as-refresh: want ErrTokenWrongType, got %v", err)
	}
}

func TestTokenProvider_Malformed(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := p.ValidateAccess("not-a-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("garbage token: want ErrTokenMalformed, got %v", err)
	}
	if _, err := p.ValidateRefresh(""); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("empty token: want ErrTokenMalformed, got %v", err)
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -time.Minute, -time.Minute)

	pair, err := p.IssuePair("u1", "s1", "user")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := p.ValidateAccess(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired access: want ErrTokenExpired, got %v", err)
	}
	if _, err := p.ValidateRefresh(pair.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired refresh: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenProvider_WrongIssuerAudience(t *testing.T) {
	signer, _ := ParsePrivateKey(testPrivateKeyPEM)
	pub, _ := ParsePublicKey(testPublicKeyPEM)
	issuerA := NewTokenProvider(signer, pub, "issuer-a", "aud-a", time.Minute, time.Hour)
	issuerB := NewTokenProvider(signer, pub, "issuer-b", "aud-a", time.Minute, time.Hour)
	audB := NewTokenProvider(signer, pub, "issuer-a", "aud-b", time.Minute, time.Hour)

	pair, err := issuerA.IssuePair("u1", "s1", "user")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := issuerB.ValidateAccess(pair.AccessToken); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("wrong issuer: want ErrTokenMalformed, got %v", err)
	}
	if _, err := audB.ValidateAccess(pair.AccessToken); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("wrong audience: want ErrTokenMalformed, got %v", err)
	}
}
