package services

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/Dosada05/sabo-arena/utils"
)

const RoleAdmin = "admin"

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Principal is the authenticated organizer.
type Principal struct {
	Username string
	Role     string
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*Principal, error)
}

type authService struct {
	adminUsername     string
	adminPasswordHash string
	logger            *slog.Logger
}

func NewAuthService(adminUsername, adminPasswordHash string, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
		logger:            logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Principal, error) {
	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.adminUsername)) == 1
	// bcrypt runs even for an unknown username.
	passOK := utils.CheckPasswordHash(input.Password, s.adminPasswordHash)
	if !userOK || !passOK {
		s.logger.WarnContext(ctx, "failed login attempt", slog.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}
	return &Principal{Username: s.adminUsername, Role: RoleAdmin}, nil
}
