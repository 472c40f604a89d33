package totp

import "time"

// BackupCode stores the one-way hash of a single-use recovery code. UsedAt
// stays nil until the code is consumed.
type BackupCode struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"index;not null"`
	CodeHash  string     `json:"-" gorm:"index;size:64;not null"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (BackupCode) TableName() string {
	return "backup_codes"
}
