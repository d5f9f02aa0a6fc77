package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth configures bearer token verification for protected routes
type Auth struct {
	jwtSecret string
	jwksURL   string
	issuer    string
	audience  string
	noAuthUID string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Shared secret for HS256 signed bearer tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TOOLFORGE_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
		&cli.StringFlag{
			Name:        "jwks-url",
			Usage:       "JWKS endpoint for asymmetrically signed bearer tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TOOLFORGE_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Required iss claim",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TOOLFORGE_JWT_ISSUER"),
			Destination: &x.issuer,
		},
		&cli.StringFlag{
			Name:        "jwt-audience",
			Usage:       "Required aud claim",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TOOLFORGE_JWT_AUDIENCE"),
			Destination: &x.audience,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run every request as the given admin user ID (development only). Example: --no-auth=dev-user",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TOOLFORGE_NO_AUTH"),
			Destination: &x.noAuthUID,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.String("jwks-url", x.jwksURL),
		slog.String("issuer", x.issuer),
		slog.String("audience", x.audience),
		slog.String("no-auth", x.noAuthUID),
	)
}

// IsNoAuthMode reports whether authentication is bypassed
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthUID != ""
}

// Configure returns the authenticator. Exactly one of --no-auth, --jwt-secret
// and --jwks-url must be set.
func (x *Auth) Configure(ctx context.Context) (usecase.AuthUseCaseInterface, error) {
	set := 0
	for _, v := range []string{x.noAuthUID, x.jwtSecret, x.jwksURL} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return nil, goerr.Wrap(ErrMissingRequired, "one of --jwt-secret, --jwks-url or --no-auth is required")
	}
	if set > 1 {
		return nil, goerr.Wrap(ErrInvalidConfig, "--jwt-secret, --jwks-url and --no-auth are mutually exclusive")
	}

	if x.noAuthUID != "" {
		logging.From(ctx).Warn("Running in no-auth mode (development only)", "user_id", x.noAuthUID)
		return usecase.NewNoAuthnUseCase(x.noAuthUID, ""), nil
	}

	var opts []usecase.AuthOption
	if x.issuer != "" {
		opts = append(opts, usecase.WithIssuer(x.issuer))
	}
	if x.audience != "" {
		opts = append(opts, usecase.WithAudience(x.audience))
	}

	if x.jwtSecret != "" {
		uc, err := usecase.NewAuthUseCaseWithSecret([]byte(x.jwtSecret), opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure HS256 authentication")
		}
		return uc, nil
	}

	uc, err := usecase.NewAuthUseCaseWithJWKS(ctx, x.jwksURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure JWKS authentication", goerr.V("jwks_url", x.jwksURL))
	}
	return uc, nil
}
