package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service mints and verifies the staff tokens protecting the admin API.
// Tokens are issued out of band (ops tooling), so there is no login or
// refresh flow here.
type Service struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewService(secretKey string) *Service {
	return &Service{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// JWTAuth exposes the verifier for the router middleware.
func (s *Service) JWTAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// GenerateStaffToken mints a token for the given staff subject.
func (s *Service) GenerateStaffToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	claims := map[string]interface{}{
		"sub":  subject,
		"type": "staff",
		"iat":  time.Now().Unix(),
		"exp":  expiresAt,
	}

	_, tokenString, err := s.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expiresAt, nil
}
