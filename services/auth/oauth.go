package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const oauthStateKeyPrefix = "oauth:state:"

var supportedProviders = map[string]bool{
	"google":    true,
	"github":    true,
	"microsoft": true,
}

// ProviderIdentity is the subset of an external provider's profile the
// service needs to link or create an account.
type ProviderIdentity struct {
	Provider       string
	ProviderUserID string
	Email          string
}

// ProviderClient exchanges an authorization code for the external identity.
type ProviderClient interface {
	AuthorizationURL(provider, state, redirectURI string) (string, error)
	Exchange(ctx context.Context, provider, code, redirectURI string) (*ProviderIdentity, error)
}

// OAuthResult is the callback outcome: a token pair plus whether the account
// was created during this exchange.
type OAuthResult struct {
	Tokens  *TokenPair
	User    *User
	NewUser bool
}

// InitiateOAuth stores a single-use state nonce and returns the provider's
// authorization URL.
func (s *Service) InitiateOAuth(ctx context.Context, provider, redirectURI string) (authURL, state string, err error) {
	if !supportedProviders[provider] {
		return "", "", ErrUnknownProvider
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	state = hex.EncodeToString(raw)

	err = s.redis.Set(ctx, oauthStateKeyPrefix+state, provider, s.config.OAuth.StateExpiry).Err()
	if err != nil {
		return "", "", fmt.Errorf("failed to store OAuth state: %w", err)
	}

	authURL, err = s.oauth.AuthorizationURL(provider, state, redirectURI)
	if err != nil {
		return "", "", err
	}
	return authURL, state, nil
}

// CompleteOAuth validates the state nonce, exchanges the code with the
// provider, links or creates the local account, and issues tokens.
func (s *Service) CompleteOAuth(ctx context.Context, provider, code, state, redirectURI string) (*OAuthResult, error) {
	stateKey := oauthStateKeyPrefix + state
	storedProvider, err := s.redis.Get(ctx, stateKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidOAuthState
		}
		return nil, fmt.Errorf("failed to load OAuth state: %w", err)
	}
	if storedProvider != provider {
		return nil, ErrInvalidOAuthState
	}
	if err := s.redis.Del(ctx, stateKey).Err(); err != nil {
		return nil, fmt.Errorf("failed to consume OAuth state: %w", err)
	}

	identity, err := s.oauth.Exchange(ctx, provider, code, redirectURI)
	if err != nil {
		return nil, err
	}

	user, created, err := s.findOrCreateOAuthUser(identity)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("OAuth login completed",
			zap.String("user_id", user.ID),
			zap.String("provider", provider),
			zap.Bool("new_user", created))
	}

	return &OAuthResult{Tokens: tokens, User: user, NewUser: created}, nil
}

// findOrCreateOAuthUser resolves the provider identity to a local user.
// Resolution order: existing provider link, then email match (linking the
// provider to the account), then a fresh passwordless account in the default
// tenant.
func (s *Service) findOrCreateOAuthUser(identity *ProviderIdentity) (*User, bool, error) {
	var user User
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var link OAuthAccount
		err := tx.Where("provider = ? AND provider_user_id = ?",
			identity.Provider, identity.ProviderUserID).First(&link).Error
		if err == nil {
			return tx.Where("id = ?", link.UserID).First(&user).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up OAuth link: %w", err)
		}

		err = tx.Where("email = ?", identity.Email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = User{
				ID:       uuid.New().String(),
				TenantID: s.config.OAuth.DefaultTenant,
				Email:    identity.Email,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create OAuth user: %w", err)
			}
			created = true
		} else if err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}

		link = OAuthAccount{
			UserID:         user.ID,
			Provider:       identity.Provider,
			ProviderUserID: identity.ProviderUserID,
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link OAuth account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &user, created, nil
}
