package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := SignAccessToken(Claims{UserID: "7", Role: RoleMerchantOwner}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyAccessToken(ParseBearerToken("Bearer "+token), "secret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "7" || !claims.CanManageMenuPhotos() {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := VerifyAccessToken(token, "other"); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := SignAccessToken(Claims{Role: RoleSuperAdmin}, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccessToken(token, "secret"); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestParseBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"abc":         "",
		"":            "",
	}
	for header, expected := range cases {
		if got := ParseBearerToken(header); got != expected {
			t.Fatalf("%q: expected %q, got %q", header, expected, got)
		}
	}
}

func TestVerifyAPIKey(t *testing.T) {
	hash, err := HashAPIKey("k-123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyAPIKey("k-123", hash) {
		t.Fatalf("expected key to verify")
	}
	if VerifyAPIKey("k-124", hash) || VerifyAPIKey("k-123", "") || VerifyAPIKey("", hash) {
		t.Fatalf("expected mismatch")
	}
}
