package gorm

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKey recognises unique violations from both supported drivers,
// with or without gorm's TranslateError enabled.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
