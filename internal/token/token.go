package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken    = errors.New("token: invalid token")
	ErrExpiredToken    = errors.New("token: token expired")
	ErrMalformedClaims = errors.New("token: malformed claims")
)

// Identity is the verified caller extracted from a token. It is produced
// only by Validate and consumed read-only downstream.
type Identity struct {
	Username string
	UserID   uint
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service signs and verifies token pairs with a single process-wide secret.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

func (s *Service) IssuePair(username string, userID uint) (Pair, error) {
	access, err := s.sign(username, userID, AccessTokenTTL)

	if err != nil {
		return Pair{}, err
	}

	refresh, err := s.sign(username, userID, RefreshTokenTTL)

	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(username string, userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     username,
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) Validate(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}

	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return Identity{}, ErrMalformedClaims
	}

	username, ok := claims["sub"].(string)

	if !ok || username == "" {
		return Identity{}, ErrMalformedClaims
	}

	userID, ok := claims["user_id"].(float64)

	if !ok {
		return Identity{}, ErrMalformedClaims
	}

	return Identity{Username: username, UserID: uint(userID)}, nil
}

// Refresh validates the refresh token and reissues a fresh pair for the
// same identity. Refresh tokens are not single-use; there is no
// revocation list.
func (s *Service) Refresh(refreshToken string) (Pair, error) {
	identity, err := s.Validate(refreshToken)

	if err != nil {
		return Pair{}, err
	}

	return s.IssuePair(identity.Username, identity.UserID)
}
