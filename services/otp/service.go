package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/mail"
	"github.com/saasforge/authcore/services/ratelimit"
	"go.uber.org/zap"
)

var (
	ErrRateLimited = errors.New("too many OTP requests")
	ErrInvalidCode = errors.New("OTP invalid or expired")
)

const (
	codeKeyPrefix = "otp:"
	rateKeyPrefix = "otp:rate:"
)

// Service issues short-lived numeric one-time codes keyed by (email,
// purpose), delivered by mail when a sender is configured.
type Service struct {
	config  *config.Config
	redis   redis.UniversalClient
	limiter *ratelimit.Service
	mailer  *mail.Service
	logger  *logging.Service
}

func NewService(cfg *config.Config, redisClient redis.UniversalClient, limiter *ratelimit.Service, mailer *mail.Service, logger *logging.Service) *Service {
	return &Service{
		config:  cfg,
		redis:   redisClient,
		limiter: limiter,
		mailer:  mailer,
		logger:  logger,
	}
}

// Send generates and stores a fresh code for the email/purpose pair,
// superseding any prior code. Sends are rate limited per email.
func (s *Service) Send(ctx context.Context, email, purpose string) (time.Time, error) {
	if !s.limiter.Allow(ctx, rateKeyPrefix+email, s.config.RateLimit.OTPMax, s.config.RateLimit.OTPWindow) {
		return time.Time{}, ErrRateLimited
	}

	code, err := s.generateCode()
	if err != nil {
		return time.Time{}, err
	}

	key := codeKey(email, purpose)
	if err := s.redis.Set(ctx, key, code, s.config.OTP.Expiry).Err(); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store OTP", zap.String("email", email), zap.Error(err))
		}
		return time.Time{}, fmt.Errorf("failed to store OTP: %w", err)
	}

	if s.mailer != nil {
		subject := fmt.Sprintf("Your %s verification code", purpose)
		body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
			code, int(s.config.OTP.Expiry.Minutes()))
		if err := s.mailer.Send(email, subject, body); err != nil {
			return time.Time{}, err
		}
	} else if s.logger != nil {
		// Mock delivery path: surfaced in logs only, never in the response.
		s.logger.Info("OTP generated (mail disabled)",
			zap.String("email", email),
			zap.String("purpose", purpose),
			zap.String("code", code))
	}

	return time.Now().Add(s.config.OTP.Expiry), nil
}

// Verify compares the presented code in constant time and consumes it on the
// first successful match.
func (s *Service) Verify(ctx context.Context, email, purpose, presented string) error {
	key := codeKey(email, purpose)

	stored, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to load OTP: %w", err)
	}

	if len(stored) != len(presented) ||
		subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return ErrInvalidCode
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to consume OTP", zap.String("email", email), zap.Error(err))
		}
		return fmt.Errorf("failed to consume OTP: %w", err)
	}

	return nil
}

func (s *Service) generateCode() (string, error) {
	limit := big.NewInt(1)
	for range s.config.OTP.Digits {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	return fmt.Sprintf("%0*d", s.config.OTP.Digits, n), nil
}

func codeKey(email, purpose string) string {
	return codeKeyPrefix + email + ":" + purpose
}
