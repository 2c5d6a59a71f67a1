package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/internal/config"
)

var tracer = otel.Tracer("auth")

const tokenAudience = "ideaboard"

type AuthService struct {
	config config.Auth
}

func NewAuthService(config config.Auth) *AuthService {
	return &AuthService{
		config: config,
	}
}

type AuthResult struct {
	ID          string
	DisplayName string
}

type tokenClaims struct {
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed bearer token for the given identity.
func (s *AuthService) IssueToken(ctx context.Context, identity ideaboard.Identity) (string, error) {
	_, span := tracer.Start(ctx, "Auth.Service.IssueToken")
	defer span.End()

	now := time.Now()
	claims := tokenClaims{
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.TokenTTLHour) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		span.RecordError(errors.Wrap(err, "token signing failed"))
		return "", err
	}

	return signed, nil
}

// AuthToken validates a bearer token and resolves the requester identity.
func (s *AuthService) AuthToken(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithAudience(tokenAudience))
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if !parsed.Valid {
		err := fmt.Errorf("invalid token")
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject == "" {
		err := fmt.Errorf("token has no subject")
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{
		ID:          claims.Subject,
		DisplayName: claims.DisplayName,
	}, nil
}
