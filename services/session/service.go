package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("refresh session not found")
	ErrReuseDetected   = errors.New("refresh token reuse detected")
	ErrMalformedToken  = errors.New("malformed refresh token")
	ErrCacheFailure    = errors.New("session store unavailable")
)

const keyPrefix = "refresh:"

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

// rotateScript performs compare-and-swap rotation in a single cache round
// trip so two concurrent rotations of the same token cannot both succeed.
// A hash mismatch deletes the record outright: the superseded token was
// presented, which is treated as a compromise signal.
const rotateScript = `
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
if stored ~= ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "EX", tonumber(ARGV[3]))
return 2
`

var rotateLua = redis.NewScript(rotateScript)

// Service owns the per-user refresh-token slot. At most one valid refresh
// token exists per user at any instant; starting a new session supersedes the
// prior record.
type Service struct {
	redis  redis.UniversalClient
	config *config.Config
	logger *logging.Service
}

func NewService(redisClient redis.UniversalClient, cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		redis:  redisClient,
		config: cfg,
		logger: logger,
	}
}

// Start creates an active refresh session for the user, overwriting any
// prior record, and returns the opaque token.
func (s *Service) Start(ctx context.Context, userID string) (string, error) {
	token, err := s.generateToken(userID)
	if err != nil {
		return "", err
	}

	err = s.redis.Set(ctx, keyPrefix+userID, hashToken(token), s.config.RefreshToken.Expiry).Err()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store refresh session",
				zap.String("user_id", userID), zap.Error(err))
		}
		return "", fmt.Errorf("%w: %v", ErrCacheFailure, err)
	}

	if s.logger != nil {
		s.logger.Info("refresh session started",
			zap.String("user_id", userID),
			zap.Duration("expiry", s.config.RefreshToken.Expiry))
	}

	return token, nil
}

// Rotate atomically replaces the stored record with a fresh token when the
// presented token matches. Presenting a superseded token destroys the session
// and surfaces ErrReuseDetected so operators can alert on it.
func (s *Service) Rotate(ctx context.Context, presented string) (userID, newToken string, err error) {
	userID, err = UserIDFromToken(presented)
	if err != nil {
		return "", "", err
	}

	newToken, err = s.generateToken(userID)
	if err != nil {
		return "", "", err
	}

	expirySeconds := int64(s.config.RefreshToken.Expiry.Seconds())
	status, err := rotateLua.Run(ctx, s.redis,
		[]string{keyPrefix + userID},
		hashToken(presented), hashToken(newToken), expirySeconds,
	).Int64()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("refresh rotation failed - cache error",
				zap.String("user_id", userID), zap.Error(err))
		}
		return "", "", fmt.Errorf("%w: %v", ErrCacheFailure, err)
	}

	switch status {
	case rotateStatusRotated:
		if s.logger != nil {
			s.logger.Info("refresh token rotated", zap.String("user_id", userID))
		}
		return userID, newToken, nil
	case rotateStatusMismatch:
		if s.logger != nil {
			s.logger.Error("SECURITY: refresh token reuse detected, session revoked",
				zap.String("user_id", userID))
		}
		return "", "", ErrReuseDetected
	default:
		return "", "", ErrSessionNotFound
	}
}

// End deletes the user's refresh session. Deleting an absent session is not
// an error.
func (s *Service) End(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, keyPrefix+userID).Err(); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to delete refresh session",
				zap.String("user_id", userID), zap.Error(err))
		}
		return fmt.Errorf("%w: %v", ErrCacheFailure, err)
	}

	if s.logger != nil {
		s.logger.Info("refresh session ended", zap.String("user_id", userID))
	}

	return nil
}

// UserIDFromToken extracts the user id prefix from an opaque refresh token
// of the form "user_id:random".
func UserIDFromToken(token string) (string, error) {
	userID, rest, found := strings.Cut(token, ":")
	if !found || userID == "" || rest == "" {
		return "", ErrMalformedToken
	}
	return userID, nil
}

func (s *Service) generateToken(userID string) (string, error) {
	raw := make([]byte, s.config.RefreshToken.TokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return userID + ":" + hex.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
