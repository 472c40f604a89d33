package apikey

import (
	"strings"
	"time"
)

// APIKey stores the one-way digest of an opaque key plus its grant metadata.
// The plaintext key is returned to the caller exactly once, at creation.
type APIKey struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	UserID    string     `json:"user_id" gorm:"index;not null"`
	TenantID  string     `json:"tenant_id" gorm:"index;not null"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	KeyDigest string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	Scopes    string     `json:"scopes" gorm:"size:1024"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

// ScopeList decodes the comma-separated scopes column.
func (k *APIKey) ScopeList() []string {
	if k.Scopes == "" {
		return nil
	}
	return strings.Split(k.Scopes, ",")
}
