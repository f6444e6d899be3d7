package ports

import (
	"context"
	"time"

	"github.com/adboard/board-api/internal/core/domain"
)

const TokenTypeBearer = "Bearer"

// AccessToken is what a successful login hands back to the client.
type AccessToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*AccessToken, error)
	ResolveCurrentIdentity(ctx context.Context, token string) (*domain.User, error)
}
