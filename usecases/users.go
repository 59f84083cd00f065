package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
	"github.com/harumaki2000/medication-app/repositories"
	"github.com/harumaki2000/medication-app/services"
	"github.com/sirupsen/logrus"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      uint   `json:"user_id"`
}

type UserUseCase struct {
	db          db.Database
	repos       repositories.Manager
	credentials *services.CredentialService
	log         logrus.FieldLogger
}

func NewUserUseCase(database db.Database, repos repositories.Manager, credentials *services.CredentialService, log logrus.FieldLogger) *UserUseCase {
	return &UserUseCase{
		db:          database,
		repos:       repos,
		credentials: credentials,
		log:         log,
	}
}

// RegisterUser stores a new user with a hashed password. A taken email or
// username yields ErrConflict.
func (uc *UserUseCase) RegisterUser(ctx context.Context, email, username, password string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", ErrValidation)
	}

	hash, err := uc.credentials.HashPassword(password)
	if errors.Is(err, services.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, services.MaxPasswordBytes)
	}
	if err != nil {
		return nil, err
	}

	user := &entities.User{Email: email, Username: username, PasswordHash: hash}
	if err := uc.repos.Users(uc.db).Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or username already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	uc.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// GetUserByEmail returns nil, nil when no user has that email.
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := uc.repos.Users(uc.db).GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (uc *UserUseCase) GetUser(ctx context.Context, id uint) (*entities.User, error) {
	user, err := uc.repos.Users(uc.db).GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, err
}

// Login checks the credentials and issues a bearer token whose subject is
// the email. Unknown email and wrong password fail identically.
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	var ok bool
	if user == nil {
		ok = uc.credentials.RejectPassword(password)
	} else {
		ok = uc.credentials.VerifyPassword(password, user.PasswordHash)
	}
	if !ok {
		uc.log.Info("login rejected")
		return nil, ErrAuthentication
	}

	token, _, err := uc.credentials.IssueToken(user.Email)
	if err != nil {
		return nil, err
	}

	uc.log.WithField("user_id", user.ID).Info("user logged in")
	return &LoginResult{
		AccessToken: token,
		TokenType:   services.TokenType,
		UserID:      user.ID,
	}, nil
}

// Authenticate resolves a bearer token to its user.
func (uc *UserUseCase) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	email, err := uc.credentials.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	user, err := uc.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown subject", ErrAuthentication)
	}
	return user, nil
}
