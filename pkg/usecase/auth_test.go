package usecase_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/usecase"
)

func buildToken(t *testing.T, sub string, isAdmin bool, exp time.Time) jwt.Token {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Subject(sub).
		IssuedAt(time.Now()).
		Expiration(exp).
		Claim("email", sub+"@example.com").
		Claim("user_metadata", map[string]any{"isAdmin": isAdmin}).
		Build()
	gt.NoError(t, err).Required()
	return tok
}

func signHS256(t *testing.T, tok jwt.Token, secret []byte) string {
	t.Helper()
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, secret))
	gt.NoError(t, err).Required()
	return string(signed)
}

func TestAuthUseCaseWithSecret(t *testing.T) {
	ctx := context.Background()
	secret := []byte("test-secret-with-enough-length-0123456789")

	uc, err := usecase.NewAuthUseCaseWithSecret(secret)
	gt.NoError(t, err).Required()
	gt.Bool(t, uc.IsNoAuthn()).False()

	t.Run("valid admin token", func(t *testing.T) {
		token := signHS256(t, buildToken(t, "admin-1", true, time.Now().Add(time.Hour)), secret)

		user, err := uc.Authenticate(ctx, token)
		gt.NoError(t, err).Required()
		gt.Value(t, user.ID).Equal(model.UserID("admin-1"))
		gt.Value(t, user.Email).Equal("admin-1@example.com")
		gt.Bool(t, user.IsAdmin).True()

		cached, err := uc.Authenticate(ctx, token)
		gt.NoError(t, err).Required()
		gt.Value(t, cached.ID).Equal(user.ID)
	})

	t.Run("regular user", func(t *testing.T) {
		token := signHS256(t, buildToken(t, "user-1", false, time.Now().Add(time.Hour)), secret)
		user, err := uc.Authenticate(ctx, token)
		gt.NoError(t, err).Required()
		gt.Bool(t, user.IsAdmin).False()
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signHS256(t, buildToken(t, "user-1", true, time.Now().Add(time.Hour)), []byte("another-secret-0123456789-0123456789"))
		_, err := uc.Authenticate(ctx, token)
		gt.Error(t, err).Is(usecase.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signHS256(t, buildToken(t, "user-1", false, time.Now().Add(-time.Hour)), secret)
		_, err := uc.Authenticate(ctx, token)
		gt.Error(t, err).Is(usecase.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "not-a-jwt")
		gt.Error(t, err).Is(usecase.ErrInvalidToken)
	})

	t.Run("empty secret is rejected", func(t *testing.T) {
		_, err := usecase.NewAuthUseCaseWithSecret(nil)
		gt.Error(t, err)
	})
}

func TestAuthUseCaseWithJWKS(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err).Required()
	key, err := jwk.FromRaw(raw)
	gt.NoError(t, err).Required()
	gt.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	gt.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))

	pub, err := jwk.PublicKeyOf(key)
	gt.NoError(t, err).Required()
	set := jwk.NewSet()
	gt.NoError(t, set.AddKey(pub))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	uc, err := usecase.NewAuthUseCaseWithJWKS(ctx, srv.URL, usecase.WithIssuer("https://issuer.example.com"))
	gt.NoError(t, err).Required()

	tok := buildToken(t, "user-jwks", false, time.Now().Add(time.Hour))
	gt.NoError(t, tok.Set(jwt.IssuerKey, "https://issuer.example.com"))
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, key))
	gt.NoError(t, err).Required()

	user, err := uc.Authenticate(ctx, string(signed))
	gt.NoError(t, err).Required()
	gt.Value(t, user.ID).Equal(model.UserID("user-jwks"))

	t.Run("issuer mismatch", func(t *testing.T) {
		other := buildToken(t, "user-jwks", false, time.Now().Add(time.Hour))
		gt.NoError(t, other.Set(jwt.IssuerKey, "https://evil.example.com"))
		signed, err := jwt.Sign(other, jwt.WithKey(jwa.RS256, key))
		gt.NoError(t, err).Required()

		_, err = uc.Authenticate(ctx, string(signed))
		gt.Error(t, err).Is(usecase.ErrInvalidToken)
	})
}

func TestNoAuthnUseCase(t *testing.T) {
	uc := usecase.NewNoAuthnUseCase("dev-user", "dev@example.com")
	gt.Bool(t, uc.IsNoAuthn()).True()

	user, err := uc.Authenticate(context.Background(), "")
	gt.NoError(t, err).Required()
	gt.Value(t, user.ID).Equal(model.UserID("dev-user"))
	gt.Bool(t, user.IsAdmin).True()
}
