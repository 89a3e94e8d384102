package auth

import (
	"context"
	"errors"

	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/rs/zerolog"
)

var ErrMissingCode = errors.New("missing code")

type Service struct {
	douyin *DouyinClient
	tokens *TokenIssuer
	logger *zerolog.Logger
}

func NewService(douyin *DouyinClient, tokens *TokenIssuer, logger *zerolog.Logger) *Service {
	return &Service{
		douyin: douyin,
		tokens: tokens,
		logger: logger,
	}
}

// DouyinCallback trades an authorization code for an app token.
func (s *Service) DouyinCallback(ctx context.Context, code string) (models.AuthCallbackResponse, error) {
	if code == "" {
		return models.AuthCallbackResponse{}, ErrMissingCode
	}

	token, err := s.douyin.ExchangeCode(ctx, code)
	if err != nil {
		return models.AuthCallbackResponse{}, err
	}

	profile, err := s.douyin.UserInfo(ctx, token.AccessToken, token.OpenID)
	if err != nil {
		return models.AuthCallbackResponse{}, err
	}

	user := models.User{
		Sub:      ProviderDouyin + ":" + token.OpenID,
		Provider: ProviderDouyin,
		Nickname: stringField(profile, "nickname"),
		Avatar:   stringField(profile, "avatar"),
	}

	appToken, err := s.tokens.CreateToken(user)
	if err != nil {
		return models.AuthCallbackResponse{}, err
	}

	s.logger.Info().Str("sub", user.Sub).Msg("douyin login")

	return models.AuthCallbackResponse{
		AppToken: appToken,
		Profile:  profile,
	}, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
