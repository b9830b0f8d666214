package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds      = errors.New("invalid email or password")
	ErrEmailTaken    = errors.New("email already registered")
	ErrAccountLocked = errors.New("account temporarily locked")
	ErrBadToken      = errors.New("invalid or expired token")
)

const (
	lockThreshold = 5
	lockDuration  = 30 * time.Minute
)

type AuthService struct {
	Users    *repos.UserRepo
	Secret   []byte
	TokenTTL time.Duration
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{Users: users, Secret: []byte(secret), TokenTTL: ttl}
}

func (s *AuthService) Register(email, password, firstName, lastName, phone string) (*domain.User, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Hash:      string(hash),
		Role:      "USER",
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed bearer token. Five
// consecutive failures lock the account for thirty minutes.
func (s *AuthService) Login(email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return "", nil, ErrBadCreds
	}
	if u.LockedUntil != "" {
		if until, err := time.Parse(time.RFC3339, u.LockedUntil); err == nil && until.After(time.Now().UTC()) {
			return "", nil, ErrAccountLocked
		}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		_ = s.Users.RecordLoginFailure(u.ID, lockThreshold, lockDuration)
		return "", nil, ErrBadCreds
	}
	_ = s.Users.ResetLoginFailures(u.ID)

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) issueToken(u *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// VerifyToken parses a bearer token and loads the user behind it.
func (s *AuthService) VerifyToken(tokenString string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrBadToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrBadToken
	}
	u, err := s.Users.ByID(sub)
	if err != nil {
		return nil, ErrBadToken
	}
	return u, nil
}
