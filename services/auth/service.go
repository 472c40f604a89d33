package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/password"
	"github.com/saasforge/authcore/services/ratelimit"
	"github.com/saasforge/authcore/services/revocation"
	"github.com/saasforge/authcore/services/session"
	"github.com/saasforge/authcore/services/totp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const loginRateKeyPrefix = "login:rate:"

// Service orchestrates the credential lifecycle: password login with an
// optional second factor, token issuance, refresh rotation, and logout.
type Service struct {
	db         *gorm.DB
	redis      redis.UniversalClient
	config     *config.Config
	passwords  *password.Service
	tokens     *jwt.Service
	sessions   *session.Service
	revocation *revocation.Service
	mfa        *totp.Service
	limiter    *ratelimit.Service
	oauth      ProviderClient
	logger     *logging.Service
}

func NewService(
	db *gorm.DB,
	redisClient redis.UniversalClient,
	cfg *config.Config,
	passwords *password.Service,
	tokens *jwt.Service,
	sessions *session.Service,
	revocationSvc *revocation.Service,
	mfa *totp.Service,
	limiter *ratelimit.Service,
	oauthClient ProviderClient,
	logger *logging.Service,
) *Service {
	return &Service{
		db:         db,
		redis:      redisClient,
		config:     cfg,
		passwords:  passwords,
		tokens:     tokens,
		sessions:   sessions,
		revocation: revocationSvc,
		mfa:        mfa,
		limiter:    limiter,
		oauth:      oauthClient,
		logger:     logger,
	}
}

// LoginRequest carries everything a password login may need. TOTPCode doubles
// as a backup code when it does not verify as a live TOTP value.
type LoginRequest struct {
	Email     string
	Password  string
	TOTPCode  string
	UserAgent string
}

// Login verifies the primary credential, enforces the second factor when one
// is enrolled, and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	rateKey := loginRateKeyPrefix + req.Email
	if !s.limiter.Allow(ctx, rateKey, s.config.RateLimit.LoginMax, s.config.RateLimit.LoginWindow) {
		return nil, ErrRateLimited
	}

	var user User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.PasswordHash == nil {
		// OAuth-only account: there is no password to verify against.
		return nil, ErrInvalidCredentials
	}

	ok, err := s.passwords.Verify(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.TOTPSecret != nil {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if !s.mfa.ValidateCode(*user.TOTPSecret, req.TOTPCode) {
			// Fall back to the single-use backup codes.
			if err := s.mfa.ConsumeBackupCode(user.ID, req.TOTPCode); err != nil {
				if errors.Is(err, totp.ErrInvalidBackupCode) {
					return nil, ErrInvalidTOTP
				}
				return nil, err
			}
			if s.logger != nil {
				s.logger.Warn("backup code consumed during login", zap.String("user_id", user.ID))
			}
		}
	}

	s.limiter.Reset(ctx, rateKey)
	s.logLogin(&user, req.UserAgent)

	return s.issueTokens(ctx, &user)
}

// Logout revokes the refresh session and blacklists the presented access
// token for the remainder of its lifetime. An unparseable access token is
// ignored; the session teardown is what matters.
func (s *Service) Logout(ctx context.Context, refreshToken, accessToken string) error {
	userID, err := session.UserIDFromToken(refreshToken)
	if err != nil {
		return err
	}

	if err := s.sessions.End(ctx, userID); err != nil {
		return err
	}

	if accessToken != "" {
		claims, err := s.tokens.ValidateToken(accessToken)
		if err == nil && claims.ExpiresAt != nil {
			if err := s.revocation.Blacklist(ctx, claims.JTI, "logout", claims.ExpiresAt.Time); err != nil &&
				!errors.Is(err, revocation.ErrAlreadyExpired) {
				return err
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("user logged out", zap.String("user_id", userID))
	}
	return nil
}

// Refresh rotates the refresh token and mints a new access token. The user
// row is re-read so a deleted account cannot keep refreshing.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, newRefresh, err := s.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	var user User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Account vanished after the session was started; revoke it.
			_ = s.sessions.End(ctx, userID)
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.TenantID, user.Email, user.RoleList())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    s.tokens.GetAccessExpirySeconds(),
	}, nil
}

// ValidateToken checks signature, expiry, and the revocation ledger.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// GetUserByEmail loads an active user by email.
func (s *Service) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// GetUser loads an active user by id.
func (s *Service) GetUser(userID string) (*User, error) {
	var user User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// CreateUser registers a password-credentialed user in the given tenant.
func (s *Service) CreateUser(tenantID, email, plaintextPassword string) (*User, error) {
	hash, err := s.passwords.Hash(plaintextPassword)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: &hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.TenantID, user.Email, user.RoleList())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.GetAccessExpirySeconds(),
	}, nil
}

func (s *Service) logLogin(user *User, rawUserAgent string) {
	if s.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("user_id", user.ID),
		zap.String("tenant_id", user.TenantID),
	}
	if rawUserAgent != "" {
		ua := useragent.Parse(rawUserAgent)
		fields = append(fields,
			zap.String("device", deviceSummary(ua)),
			zap.String("browser", ua.Name),
			zap.String("os", ua.OS),
		)
	}
	s.logger.Info("user logged in", fields...)
}

func deviceSummary(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}
