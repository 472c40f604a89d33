package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCode       = errors.New("invalid TOTP code")
	ErrInvalidBackupCode = errors.New("invalid backup code")
)

const backupCodeCount = 10

// Enrollment carries the one-time outputs of a TOTP enrollment: the shared
// secret, the otpauth:// provisioning URL, and the plaintext backup codes.
// None of these are recoverable afterwards.
type Enrollment struct {
	Secret          string
	ProvisioningURL string
	BackupCodes     []string
}

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

// GenerateSecret creates a fresh base32 shared secret and its provisioning
// URL for the given account.
func (s *Service) GenerateSecret(accountName string) (secret, provisioningURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.config.TOTP.Issuer,
		AccountName: accountName,
		SecretSize:  s.config.TOTP.SecretSize,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("TOTP key generation failed",
				zap.Error(err), zap.String("account_name", accountName))
		}
		return "", "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// ValidateCode checks an RFC 6238 code against the secret, accepting the
// current 30-second step and the configured skew on either side.
func (s *Service) ValidateCode(secret, code string) bool {
	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      s.config.TOTP.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("TOTP validation error", zap.Error(err))
		}
		return false
	}
	return valid
}

// GenerateBackupCodes replaces the user's backup code set. All previously
// issued codes are invalidated; the returned plaintexts are shown exactly
// once.
func (s *Service) GenerateBackupCodes(userID string) ([]string, error) {
	codes := make([]string, 0, backupCodeCount)
	records := make([]BackupCode, 0, backupCodeCount)

	for range backupCodeCount {
		code, err := generateBackupCode()
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
		records = append(records, BackupCode{
			UserID:   userID,
			CodeHash: hashBackupCode(code),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&BackupCode{}).Error; err != nil {
			return fmt.Errorf("failed to invalidate prior backup codes: %w", err)
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to store backup codes: %w", err)
		}
		return nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("backup code generation failed",
				zap.Error(err), zap.String("user_id", userID))
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("backup codes regenerated",
			zap.String("user_id", userID), zap.Int("count", backupCodeCount))
	}

	return codes, nil
}

// ConsumeBackupCode marks a matching unused backup code as consumed. Each
// code validates exactly once.
func (s *Service) ConsumeBackupCode(userID, code string) error {
	presented := hashBackupCode(strings.TrimSpace(code))

	return s.db.Transaction(func(tx *gorm.DB) error {
		var candidates []BackupCode
		if err := tx.Where("user_id = ? AND used_at IS NULL", userID).Find(&candidates).Error; err != nil {
			return fmt.Errorf("failed to load backup codes: %w", err)
		}

		for _, candidate := range candidates {
			if subtle.ConstantTimeCompare([]byte(candidate.CodeHash), []byte(presented)) == 1 {
				now := time.Now()
				if err := tx.Model(&BackupCode{}).
					Where("id = ? AND used_at IS NULL", candidate.ID).
					Update("used_at", now).Error; err != nil {
					return fmt.Errorf("failed to consume backup code: %w", err)
				}
				if s.logger != nil {
					s.logger.Info("backup code consumed", zap.String("user_id", userID))
				}
				return nil
			}
		}

		return ErrInvalidBackupCode
	})
}

// RemoveBackupCodes deletes all backup codes for the user (MFA disable).
func (s *Service) RemoveBackupCodes(tx *gorm.DB, userID string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&BackupCode{}).Error; err != nil {
		return fmt.Errorf("failed to remove backup codes: %w", err)
	}
	return nil
}

// Codes are formatted XXXX-XXXX, matching what enrollment flows display.
func generateBackupCode() (string, error) {
	raw := make([]byte, 4)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate backup code: %w", err)
	}
	encoded := strings.ToUpper(hex.EncodeToString(raw))
	return encoded[:4] + "-" + encoded[4:], nil
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
