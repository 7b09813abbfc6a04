package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordID 生成新的不透明记录标识
func RecordID() string {
	return uuid.NewString()
}

// ensureID assigns a record id when the caller did not provide one.
func ensureID(id *string) {
	if *id == "" {
		*id = RecordID()
	}
}

// DateOnly formats a timestamp as the store's date-only string.
func DateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

// AllModels lists every record collection for migration.
func AllModels() []interface{} {
	return []interface{}{
		&Client{},
		&Campaign{},
		&Customer{},
		&CallLog{},
	}
}
