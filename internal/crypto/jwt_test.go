package crypto

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignToken(t *testing.T) {
	token, err := SignToken("user-42", "test-secret")
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("SignToken() returned empty string")
	}
}

func TestSignTokenUniquePerIssuance(t *testing.T) {
	// Two issuances for the same user in the same second must still be
	// distinct strings, or single-session revocation cannot target one.
	first, err := SignToken("user-42", "test-secret")
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}
	second, err := SignToken("user-42", "test-secret")
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	if first == second {
		t.Error("SignToken() issued identical tokens back-to-back")
	}
}

func TestParseTokenValid(t *testing.T) {
	token, err := SignToken("user-42", "test-secret")
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	userID, err := ParseToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseToken() unexpected error: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("ParseToken() userID = %q, want %q", userID, "user-42")
	}
}

func TestParseTokenMalformed(t *testing.T) {
	if _, err := ParseToken("not-a-valid-token", "test-secret"); err == nil {
		t.Error("ParseToken() expected error for malformed token")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := SignToken("user-42", "correct-secret")
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	if _, err := ParseToken(token, "wrong-secret"); err == nil {
		t.Error("ParseToken() expected error for wrong secret")
	}
}

func TestParseTokenMissingUserID(t *testing.T) {
	// A signed token without the user_id claim must be rejected.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	tokenString, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := ParseToken(tokenString, "test-secret"); err == nil {
		t.Error("ParseToken() expected error for missing user_id claim")
	}
}

func TestParseTokenWrongSigningMethod(t *testing.T) {
	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user-42"})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := ParseToken(tokenString, "test-secret"); err == nil {
		t.Error("ParseToken() expected error for alg=none token")
	}
}

func TestParseTokenNoExpiry(t *testing.T) {
	// Tokens carry no expiry claim; a freshly issued token parses without
	// any time-based validation kicking in.
	token, err := SignToken("user-42", "test-secret")
	if err != nil {
		t.Fatalf("SignToken() unexpected error: %v", err)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &Claims{})
	if err != nil {
		t.Fatalf("ParseUnverified() unexpected error: %v", err)
	}
	claims := parsed.Claims.(*Claims)
	if claims.ExpiresAt != nil {
		t.Error("issued token should not carry an expiry claim")
	}
}
