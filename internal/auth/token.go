package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/povarna/pet-poison-map/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const ProviderDouyin = "douyin"

type Claims struct {
	Provider string `json:"provider"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 app tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, expireDays int) *TokenIssuer {
	if expireDays <= 0 {
		expireDays = 7
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    time.Duration(expireDays) * 24 * time.Hour,
		now:    time.Now,
	}
}

func (i *TokenIssuer) CreateToken(user models.User) (string, error) {
	now := i.now()
	claims := Claims{
		Provider: user.Provider,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) ParseToken(tokenString string) (models.User, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return models.User{}, ErrInvalidToken
	}

	return models.User{
		Sub:      claims.Subject,
		Provider: claims.Provider,
		Nickname: claims.Nickname,
		Avatar:   claims.Avatar,
	}, nil
}
