package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

const (
	claimEmail        = "email"
	claimUserMetadata = "user_metadata"
	claimIsAdmin      = "isAdmin"

	jwksRefreshInterval = 15 * time.Minute
)

// AuthUseCaseInterface authenticates bearer tokens of protected routes
type AuthUseCaseInterface interface {
	Authenticate(ctx context.Context, token string) (*auth.User, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies JWTs issued by the identity provider, either with a
// shared HS256 secret or with keys published at a JWKS URL
type AuthUseCase struct {
	parseOpts []jwt.ParseOption
	cache     *authCache
}

var _ AuthUseCaseInterface = (*AuthUseCase)(nil)

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*authConfig)

type authConfig struct {
	issuer   string
	audience string
}

// WithIssuer requires the iss claim to match
func WithIssuer(issuer string) AuthOption {
	return func(c *authConfig) {
		c.issuer = issuer
	}
}

// WithAudience requires the aud claim to contain audience
func WithAudience(audience string) AuthOption {
	return func(c *authConfig) {
		c.audience = audience
	}
}

func newAuthUseCase(key jwt.ParseOption, options []AuthOption) *AuthUseCase {
	var cfg authConfig
	for _, opt := range options {
		opt(&cfg)
	}

	parseOpts := []jwt.ParseOption{
		key,
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}
	if cfg.issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(cfg.issuer))
	}
	if cfg.audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(cfg.audience))
	}

	return &AuthUseCase{
		parseOpts: parseOpts,
		cache:     newAuthCache(),
	}
}

// NewAuthUseCaseWithSecret verifies HS256 tokens signed with secret
func NewAuthUseCaseWithSecret(secret []byte, options ...AuthOption) (*AuthUseCase, error) {
	if len(secret) == 0 {
		return nil, goerr.New("JWT secret is required")
	}
	return newAuthUseCase(jwt.WithKey(jwa.HS256, secret), options), nil
}

// NewAuthUseCaseWithJWKS verifies tokens against the key set at jwksURL. The
// set is fetched once here and refreshed in the background.
func NewAuthUseCaseWithJWKS(ctx context.Context, jwksURL string, options ...AuthOption) (*AuthUseCase, error) {
	if jwksURL == "" {
		return nil, goerr.New("JWKS URL is required")
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(jwksRefreshInterval)); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS URL", goerr.V("url", jwksURL))
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("url", jwksURL))
	}

	return newAuthUseCase(jwt.WithKeySet(jwk.NewCachedSet(cache, jwksURL)), options), nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Authenticate verifies the token and extracts the caller
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*auth.User, error) {
	if user, ok := uc.cache.get(token); ok {
		return user, nil
	}

	parsed, err := jwt.ParseString(token, uc.parseOpts...)
	if err != nil {
		logging.From(ctx).Debug("token verification failed", "error", err)
		return nil, goerr.Wrap(ErrInvalidToken, "token verification failed", goerr.V("reason", err.Error()))
	}

	user, err := userFromToken(parsed)
	if err != nil {
		return nil, err
	}

	uc.cache.set(token, user, parsed.Expiration())
	return user, nil
}

func userFromToken(tok jwt.Token) (*auth.User, error) {
	if tok.Subject() == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "token has no subject")
	}

	user := &auth.User{ID: model.UserID(tok.Subject())}

	if v, ok := tok.Get(claimEmail); ok {
		user.Email, _ = v.(string)
	}
	if v, ok := tok.Get(claimUserMetadata); ok {
		if meta, ok := v.(map[string]any); ok {
			user.IsAdmin, _ = meta[claimIsAdmin].(bool)
		}
	}

	return user, nil
}
