package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/campaign-crm/internal/auth"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
	"github.com/unclebandit/campaign-crm/internal/repository"
)

type AuthService struct {
	UserRepo repository.UserRepositoryInterface
	Identity auth.IdentityVerifier
	Tokens   *auth.TokenIssuer
}

type LoginResult struct {
	Token string        `json:"token"`
	User  model.UserRef `json:"user"`
}

// Login exchanges an identity-provider token for an app session token,
// creating the user on first sight.
func (s *AuthService) Login(ctx context.Context, idToken string) (*LoginResult, error) {
	if idToken == "" {
		return nil, appErrors.NewValidationError("token", "is required")
	}

	identity, err := s.Identity.Verify(ctx, idToken)
	if err != nil {
		logrus.WithError(err).Info("identity token rejected")
		return nil, fmt.Errorf("%w: invalid identity token", appErrors.ErrUnauthorized)
	}

	user, err := s.UserRepo.FindOrCreateByGoogleID(ctx, &model.User{
		GoogleID: identity.Subject,
		Email:    identity.Email,
		Name:     identity.Name,
		Picture:  identity.Picture,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("user logged in")
	return &LoginResult{
		Token: token,
		User:  model.UserRef{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}
