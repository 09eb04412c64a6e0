package services

import (
	"errors"
	"fmt"
	"time"

	"subcanvas/internal/models"
	"subcanvas/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor applied to every stored password hash.
const bcryptCost = 10

// AuthService handles registration, credential checks and token issuance.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// TokenUser is the sanitized user shape embedded in login responses.
type TokenUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginResult is returned by every flow that ends in a signed token.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	User        TokenUser `json:"user"`
}

// SocialLoginData carries the identity asserted by an external provider.
type SocialLoginData struct {
	Email      string
	Nickname   string
	Provider   string
	ProviderID string
}

// Register creates a LOCAL user with a hashed password and immediately logs
// them in. Fails with ErrConflict when the email is already taken.
func (s *AuthService) Register(email, password, nickname string) (*LoginResult, error) {
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, fmt.Errorf("email %s already in use: %w", email, ErrConflict)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hashedPassword),
		AuthProvider: models.ProviderLocal,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return s.Login(user)
}

// ValidateCredentials checks an email/password pair. It returns (nil, nil)
// when the user does not exist or the password mismatches, ErrUnauthorized
// for social-only or non-ACTIVE accounts, and the sanitized user on success,
// touching their last login time.
func (s *AuthService) ValidateCredentials(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.AuthProvider != models.ProviderLocal {
		return nil, fmt.Errorf("account registered via %s, use social login: %w", user.AuthProvider, ErrUnauthorized)
	}
	if user.Status != models.StatusActive {
		return nil, fmt.Errorf("account is %s: %w", user.Status, ErrUnauthorized)
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, nil
		}
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to record login time: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login issues a signed token for an already-authenticated user.
func (s *AuthService) Login(user *models.User) (*LoginResult, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   now.Add(s.tokenDurat).Unix(),
		"iat":   now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		AccessToken: tokenString,
		User: TokenUser{
			ID:       user.ID,
			Email:    user.Email,
			Nickname: user.Nickname,
			Role:     user.Role,
		},
	}, nil
}

// SocialLogin logs in or registers a user asserted by an external provider.
// An existing account under the same email must match provider and provider
// ID exactly, otherwise the call fails with ErrConflict.
func (s *AuthService) SocialLogin(data SocialLoginData) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(data.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user != nil {
		if user.AuthProvider != data.Provider || user.ProviderID != data.ProviderID {
			return nil, fmt.Errorf("email already registered under %s: %w", user.AuthProvider, ErrConflict)
		}
		now := time.Now()
		user.LastLoginAt = &now
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to record login time: %w", err)
		}
	} else {
		user = &models.User{
			Email:        data.Email,
			Nickname:     data.Nickname,
			AuthProvider: data.Provider,
			ProviderID:   data.ProviderID,
			Role:         models.RoleUser,
			Status:       models.StatusActive,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create social user: %w", err)
		}
	}

	return s.Login(user)
}

// ValidateToken parses and verifies a bearer token, returning its claims.
// Only HMAC-signed tokens are accepted.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
}

// GetActiveUser re-fetches the user named by token claims. It fails with
// ErrUnauthorized when the user no longer exists or is not ACTIVE, so status
// changes and deletions take effect immediately rather than at token expiry.
func (s *AuthService) GetActiveUser(id, email string) (*models.User, error) {
	user, err := s.userRepo.GetByIDAndEmail(id, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("token user no longer exists: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up token user: %w", err)
	}
	if user.Status != models.StatusActive {
		return nil, fmt.Errorf("account is %s: %w", user.Status, ErrUnauthorized)
	}
	user.PasswordHash = ""
	return user, nil
}
