package auth

import (
	"fmt"
	"time"

	"github.com/saasforge/authcore/services/totp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollTOTP generates a fresh shared secret and backup code set for the
// user. Re-enrolling replaces any existing secret and invalidates prior
// backup codes.
func (s *Service) EnrollTOTP(userID string) (*totp.Enrollment, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	secret, provisioningURL, err := s.mfa.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]any{
		"totp_secret":      secret,
		"totp_enrolled_at": now,
	}
	if err := s.db.Model(&User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	backupCodes, err := s.mfa.GenerateBackupCodes(user.ID)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("TOTP enrolled", zap.String("user_id", user.ID))
	}

	return &totp.Enrollment{
		Secret:          secret,
		ProvisioningURL: provisioningURL,
		BackupCodes:     backupCodes,
	}, nil
}

// VerifyTOTP checks a live code against the user's enrolled secret.
func (s *Service) VerifyTOTP(userID, code string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil {
		return ErrNotEnrolled
	}
	if !s.mfa.ValidateCode(*user.TOTPSecret, code) {
		return ErrInvalidTOTP
	}
	return nil
}

// DisableTOTP removes the second factor. The caller must re-prove the
// primary credential; a bearer token alone is not enough to weaken the
// account.
func (s *Service) DisableTOTP(userID, plaintextPassword string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil {
		return ErrNotEnrolled
	}

	if user.PasswordHash == nil {
		return ErrInvalidCredentials
	}
	ok, err := s.passwords.Verify(plaintextPassword, *user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"totp_secret":      nil,
			"totp_enrolled_at": nil,
		}
		if err := tx.Model(&User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to clear TOTP secret: %w", err)
		}
		return s.mfa.RemoveBackupCodes(tx, user.ID)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("TOTP disabled", zap.String("user_id", user.ID))
	}
	return nil
}

// RegenerateBackupCodes replaces the user's backup code set. Requires an
// active TOTP enrollment.
func (s *Service) RegenerateBackupCodes(userID string) ([]string, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPSecret == nil {
		return nil, ErrNotEnrolled
	}
	return s.mfa.GenerateBackupCodes(user.ID)
}
