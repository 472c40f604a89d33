package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidKey        = errors.New("invalid API key")
	ErrInsufficientScope = errors.New("API key does not have the required scope")
	ErrKeyNotFound       = errors.New("API key not found or already revoked")
)

const keyMaterialPrefix = "sk_"

type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

// Issue generates an opaque key, persists only its digest plus grant
// metadata, and returns the plaintext exactly once.
func (s *Service) Issue(userID, tenantID, name string, scopes []string) (plaintext string, record *APIKey, err error) {
	if _, err := ParseScopes(scopes); err != nil {
		return "", nil, err
	}

	raw := make([]byte, s.config.APIKey.KeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate API key material: %w", err)
	}
	plaintext = keyMaterialPrefix + hex.EncodeToString(raw)

	record = &APIKey{
		ID:        uuid.New().String(),
		UserID:    userID,
		TenantID:  tenantID,
		Name:      name,
		KeyDigest: digest(plaintext),
		Scopes:    strings.Join(scopes, ","),
		ExpiresAt: time.Now().Add(s.config.APIKey.DefaultExpiry),
	}

	if err := s.db.Create(record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store API key",
				zap.Error(err), zap.String("user_id", userID))
		}
		return "", nil, fmt.Errorf("failed to store API key: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("API key issued",
			zap.String("key_id", record.ID),
			zap.String("user_id", userID),
			zap.String("tenant_id", tenantID),
			zap.String("name", name))
	}

	return plaintext, record, nil
}

// Validate resolves the key by digest, excluding revoked and expired keys,
// then applies deny-by-default scope matching.
func (s *Service) Validate(plaintext, requestedScope string) (*APIKey, error) {
	var record APIKey
	err := s.db.
		Where("key_digest = ? AND revoked_at IS NULL AND expires_at > ?", digest(plaintext), time.Now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	granted, err := ParseScopes(record.ScopeList())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("stored API key has malformed scopes",
				zap.String("key_id", record.ID), zap.Error(err))
		}
		return nil, fmt.Errorf("stored scopes malformed: %w", err)
	}

	requested, err := ParseScope(requestedScope)
	if err != nil {
		return nil, err
	}

	if !MatchAny(granted, requested) {
		if s.logger != nil {
			s.logger.Warn("API key scope denied",
				zap.String("key_id", record.ID),
				zap.String("requested_scope", requestedScope))
		}
		return nil, ErrInsufficientScope
	}

	return &record, nil
}

// Revoke soft-deletes the key, scoped to its owner and tenant. A foreign or
// already-revoked key is a not-found outcome, never a silent success.
func (s *Service) Revoke(keyID, userID, tenantID string) error {
	result := s.db.Model(&APIKey{}).
		Where("id = ? AND user_id = ? AND tenant_id = ? AND revoked_at IS NULL", keyID, userID, tenantID).
		Update("revoked_at", time.Now())

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke API key",
				zap.Error(result.Error), zap.String("key_id", keyID))
		}
		return fmt.Errorf("failed to revoke API key: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}

	if s.logger != nil {
		s.logger.Info("API key revoked",
			zap.String("key_id", keyID),
			zap.String("user_id", userID),
			zap.String("tenant_id", tenantID))
	}

	return nil
}

// Key material is high entropy, so a fast deterministic digest gives an
// indexed lookup while still keeping only hashes at rest.
func digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
