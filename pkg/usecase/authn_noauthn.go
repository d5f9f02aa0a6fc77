package usecase

import (
	"context"

	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as a fixed admin user (for development/testing)
type NoAuthnUseCase struct {
	user *auth.User
}

var _ AuthUseCaseInterface = (*NoAuthnUseCase)(nil)

// NewNoAuthnUseCase creates a new NoAuthnUseCase for the given user ID
func NewNoAuthnUseCase(userID, email string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		user: &auth.User{
			ID:      model.UserID(userID),
			Email:   email,
			IsAdmin: true,
		},
	}
}

// Authenticate ignores the token and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (*auth.User, error) {
	u := *uc.user
	return &u, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
