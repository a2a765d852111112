package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Generic holds the columns shared by every model.
type Generic struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Error translation is driver-dependent, so the raw postgres and sqlite
// messages are matched alongside gorm's translated error.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
