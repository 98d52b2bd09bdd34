package security

import "testing"

func TestHashRefreshToken_Deterministic(t *testing.T) {
	h1 := HashRefreshToken("some-token")
	h2 := HashRefreshToken("some-token")
	if h1 != h2 {
		t.Error("same token should hash identically")
	}
	if h1 == HashRefreshToken("other-token") {
		t.Error("different tokens should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hex sha256 should be 64 chars, got %d", len(h1))
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	stored := HashRefreshToken("some-token")
	if !RefreshTokenHashEqual("some-token", stored) {
		t.Error("matching token should compare equal")
	}
	if RefreshTokenHashEqual("other-token", stored) {
		t.Error("non-matching token should not compare equal")
	}
	if RefreshTokenHashEqual("", stored) {
		t.Error("empty token should not compare equal")
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, hash, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if token == "" || hash == "" {
		t.Fatal("token or hash empty")
	}
	if token == hash {
		t.Fatal("raw token must not equal its hash")
	}
	if HashResetToken(token) != hash {
		t.Error("generated token should hash to the returned hash")
	}

	token2, _, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if token2 == token {
		t.Error("two generated tokens should differ")
	}
}
