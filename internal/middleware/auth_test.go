package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskloop/taskloop-go/internal/service"
)

// stubTokenStore keeps active tokens in a map.
type stubTokenStore struct {
	active map[string]string // token -> userID
}

func (s *stubTokenStore) Insert(_ context.Context, userID, token string) error {
	s.active[token] = userID
	return nil
}

func (s *stubTokenStore) Exists(_ context.Context, userID, token string) (bool, error) {
	got, ok := s.active[token]
	return ok && got == userID, nil
}

func (s *stubTokenStore) DeleteOne(_ context.Context, _, token string) error {
	delete(s.active, token)
	return nil
}

func (s *stubTokenStore) DeleteAll(_ context.Context, userID string) error {
	for t, u := range s.active {
		if u == userID {
			delete(s.active, t)
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*service.TokenService, http.Handler, *string, *string) {
	t.Helper()

	store := &stubTokenStore{active: make(map[string]string)}
	tokens := service.NewTokenService(store, "test-secret")

	var seenUserID, seenToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = UserIDFromContext(r.Context())
		seenToken, _ = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	return tokens, Auth(tokens)(next), &seenUserID, &seenToken
}

func doRequest(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	tokens, h, seenUserID, seenToken := newAuthFixture(t)

	token, err := tokens.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	rec := doRequest(h, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seenUserID != "user-1" {
		t.Errorf("user id in context = %q, want user-1", *seenUserID)
	}
	if *seenToken != token {
		t.Errorf("token in context = %q, want the request token", *seenToken)
	}
}

func TestAuth_Rejections(t *testing.T) {
	tokens, h, _, _ := newAuthFixture(t)

	token, err := tokens.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if err := tokens.RevokeOne(context.Background(), "user-1", token); err != nil {
		t.Fatalf("RevokeOne error: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Token abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-token"},
		{"revoked token", "Bearer " + token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			// Every rejection shares one body; the cause is not leaked.
			if got := rec.Body.String(); got != "{\"error\":\"please authenticate\"}\n" {
				t.Errorf("unexpected body: %s", got)
			}
		})
	}
}
