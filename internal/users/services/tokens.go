package services

import (
	"errors"
	"fmt"
	"time"

	"stormbringer/internal/users/models"
	"stormbringer/pkg/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "stormbringer"

// TokenService issues and validates HS256 session tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with secret
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user. Every token opens a new session.
func (s *TokenService) Issue(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	roles := make([]any, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = r
	}
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"user_name":  user.DisplayName,
		"session_id": uuid.NewString(),
		"roles":      roles,
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
		"iss":        tokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateJWT checks the signature, expiry and issuer of tokenString
func (s *TokenService) ValidateJWT(tokenString string) (*middleware.AuthenticatedUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid JWT token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid JWT claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, errors.New("JWT carries no user")
	}
	userName, _ := claims["user_name"].(string)
	sessionID, _ := claims["session_id"].(string)

	var roles []string
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				roles = append(roles, role)
			}
		}
	}

	return &middleware.AuthenticatedUser{
		UserID:    userID,
		UserName:  userName,
		SessionID: sessionID,
		Roles:     roles,
	}, nil
}

var _ middleware.JWTValidator = (*TokenService)(nil)
