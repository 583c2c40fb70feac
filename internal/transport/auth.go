package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type actorKey struct{}

// ActorResolver resolves the acting user from a bearer token.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (string, error)
}

// ActorFromContext returns the actor from context, if present.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey{}).(string)
	return actor, ok
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// HashToken returns the hex SHA-256 of an API key, the form keys are stored in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), token)
			if err != nil || actor == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// StaticActorMiddleware attributes every request to actor. Used when
// authentication is disabled.
func StaticActorMiddleware(actor string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// KeyStore looks up the actor that owns a hashed API key.
type KeyStore interface {
	Resolve(ctx context.Context, keyHash string) (string, error)
}

// APIKeyResolver resolves bearer tokens against stored key hashes.
type APIKeyResolver struct {
	Keys KeyStore
}

func (r APIKeyResolver) ResolveActor(ctx context.Context, token string) (string, error) {
	actor, err := r.Keys.Resolve(ctx, HashToken(token))
	if err != nil || actor == "" {
		return "", ErrUnauthorized
	}
	return actor, nil
}
