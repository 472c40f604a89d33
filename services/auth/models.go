package auth

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is the relational identity record. PasswordHash is nil for
// OAuth-only accounts; that is a valid state, not an error. TOTPSecret is nil
// until the user enrolls a second factor.
type User struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	TenantID       string     `json:"tenant_id" gorm:"index;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   *string    `json:"-"`
	TOTPSecret     *string    `json:"-"`
	TOTPEnrolledAt *time.Time `json:"totp_enrolled_at"`
	Roles          string     `json:"roles" gorm:"size:512"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) RoleList() []string {
	if u.Roles == "" {
		return nil
	}
	return strings.Split(u.Roles, ",")
}

// OAuthAccount links a user to an external identity provider account.
type OAuthAccount struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	Provider       string    `json:"provider" gorm:"uniqueIndex:idx_provider_subject,priority:1;not null"`
	ProviderUserID string    `json:"provider_user_id" gorm:"uniqueIndex:idx_provider_subject,priority:2;not null"`
	CreatedAt      time.Time `json:"created_at"`
}

func (OAuthAccount) TableName() string {
	return "oauth_accounts"
}

// TokenPair is the result of every successful issuance path.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
