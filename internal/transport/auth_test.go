package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToActor map[string]string
	err          error
}

func (r *testResolver) ResolveActor(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	actor, ok := r.tokenToActor[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return actor, nil
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToActor: map[string]string{"token": "mentor"}}

	var seen string
	handler := AuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "mentor", seen)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		resolver *testResolver
		header   string
	}{
		{"resolver error", &testResolver{err: errors.New("invalid")}, "Bearer token"},
		{"unknown token", &testResolver{tokenToActor: map[string]string{}}, "Bearer other"},
		{"missing header", &testResolver{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(tt.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestStaticActorMiddleware(t *testing.T) {
	var seen string
	handler := StaticActorMiddleware("local")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "local", seen)
}

func TestHashToken(t *testing.T) {
	require.Equal(t, "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", HashToken("test"))
	require.NotEqual(t, HashToken("a"), HashToken("b"))
}

type mapKeyStore map[string]string

func (m mapKeyStore) Resolve(_ context.Context, keyHash string) (string, error) {
	actor, ok := m[keyHash]
	if !ok {
		return "", errors.New("not found")
	}
	return actor, nil
}

func TestAPIKeyResolver(t *testing.T) {
	resolver := APIKeyResolver{Keys: mapKeyStore{HashToken("secret"): "mentor"}}

	actor, err := resolver.ResolveActor(context.Background(), "secret")
	require.NoError(t, err)
	require.Equal(t, "mentor", actor)

	_, err = resolver.ResolveActor(context.Background(), "other")
	require.ErrorIs(t, err, ErrUnauthorized)
}
