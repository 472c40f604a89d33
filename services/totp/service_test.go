package totp

import (
	"regexp"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/saasforge/authcore/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutils.SetupTestDB(t, &BackupCode{})
	return NewService(testutils.GetTestConfig(), db, nil), db
}

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestGenerateSecret(t *testing.T) {
	svc, _ := setupTestService(t)

	secret, url, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, url, "otpauth://totp/")
	assert.Contains(t, url, "secret="+secret)

	other, _, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestValidateCode(t *testing.T) {
	svc, _ := setupTestService(t)
	secret, _, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)

	now := time.Now().UTC()

	t.Run("current code accepted", func(t *testing.T) {
		assert.True(t, svc.ValidateCode(secret, codeAt(t, secret, now)))
	})

	t.Run("adjacent steps accepted", func(t *testing.T) {
		assert.True(t, svc.ValidateCode(secret, codeAt(t, secret, now.Add(-30*time.Second))))
		assert.True(t, svc.ValidateCode(secret, codeAt(t, secret, now.Add(30*time.Second))))
	})

	t.Run("distant steps rejected", func(t *testing.T) {
		// Steps well outside the one-step skew. The boundary steps are not
		// asserted here because the test can straddle a step transition.
		assert.False(t, svc.ValidateCode(secret, codeAt(t, secret, now.Add(-150*time.Second))))
		assert.False(t, svc.ValidateCode(secret, codeAt(t, secret, now.Add(150*time.Second))))
	})

	t.Run("garbage rejected", func(t *testing.T) {
		assert.False(t, svc.ValidateCode(secret, "000000"))
		assert.False(t, svc.ValidateCode(secret, "not-a-code"))
		assert.False(t, svc.ValidateCode(secret, ""))
	})
}

func TestGenerateBackupCodes(t *testing.T) {
	svc, db := setupTestService(t)

	codes, err := svc.GenerateBackupCodes("user-1")
	require.NoError(t, err)
	require.Len(t, codes, 10)

	format := regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}$`)
	for _, code := range codes {
		assert.Regexp(t, format, code)
	}

	// Plaintext is never stored.
	var records []BackupCode
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 10)
	for _, record := range records {
		assert.Len(t, record.CodeHash, 64)
		assert.NotContains(t, codes, record.CodeHash)
	}
}

func TestGenerateBackupCodes_ReplacesPriorSet(t *testing.T) {
	svc, _ := setupTestService(t)

	old, err := svc.GenerateBackupCodes("user-1")
	require.NoError(t, err)
	fresh, err := svc.GenerateBackupCodes("user-1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ConsumeBackupCode("user-1", old[0]), ErrInvalidBackupCode)
	assert.NoError(t, svc.ConsumeBackupCode("user-1", fresh[0]))
}

func TestConsumeBackupCode(t *testing.T) {
	svc, _ := setupTestService(t)

	codes, err := svc.GenerateBackupCodes("user-1")
	require.NoError(t, err)

	t.Run("single use", func(t *testing.T) {
		require.NoError(t, svc.ConsumeBackupCode("user-1", codes[0]))
		assert.ErrorIs(t, svc.ConsumeBackupCode("user-1", codes[0]), ErrInvalidBackupCode)
	})

	t.Run("other codes remain valid", func(t *testing.T) {
		assert.NoError(t, svc.ConsumeBackupCode("user-1", codes[1]))
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		assert.NoError(t, svc.ConsumeBackupCode("user-1", " "+codes[2]+" "))
	})

	t.Run("wrong user", func(t *testing.T) {
		assert.ErrorIs(t, svc.ConsumeBackupCode("user-2", codes[3]), ErrInvalidBackupCode)
	})

	t.Run("unknown code", func(t *testing.T) {
		assert.ErrorIs(t, svc.ConsumeBackupCode("user-1", "ZZZZ-ZZZZ"), ErrInvalidBackupCode)
	})
}
