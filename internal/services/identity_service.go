package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

// Caller is an authenticated user as seen by the service layer.
type Caller struct {
	UserID         uuid.UUID
	Email          string
	EmailConfirmed bool
}

type IdentityService interface {
	Authenticate(ctx context.Context, token string) (*Caller, error)
	// LookupEmail returns "" when the user is unknown.
	LookupEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

type identityService struct {
	secret      []byte
	accountRepo repositories.AccountRepository
}

func NewIdentityService(cfg *config.Config, accountRepo repositories.AccountRepository) IdentityService {
	return &identityService{
		secret:      []byte(cfg.AuthJWTSecret),
		accountRepo: accountRepo,
	}
}

func (s *identityService) Authenticate(ctx context.Context, token string) (*Caller, error) {
	claims, err := utils.ValidateToken(s.secret, token)
	if err != nil {
		if errors.Is(err, utils.ErrMisconfigured) {
			return nil, err
		}
		log.WithError(err).Debug("Access token rejected")
		return nil, utils.ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, utils.ErrUnauthorized
	}

	account, err := s.accountRepo.FindById(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: account lookup failed", utils.ErrIdentityProvider)
	}
	if account == nil {
		return nil, utils.ErrUnauthorized
	}

	email := account.Email
	if email == "" {
		email = claims.Email
	}

	return &Caller{
		UserID:         account.ID,
		Email:          email,
		EmailConfirmed: account.IsEmailConfirmed(),
	}, nil
}

func (s *identityService) LookupEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	account, err := s.accountRepo.FindById(ctx, userID)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", nil
	}
	return account.Email, nil
}
