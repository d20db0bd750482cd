package models

import (
	"time"

	"gorm.io/datatypes"
)

// Run status values.
const (
	StatusFormatted = "formatted"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Run records one file passing through the formatter.
type Run struct {
	ID        string    `gorm:"primaryKey;type:varchar(24)"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	Path string `gorm:"type:varchar(1024);index"`

	// SHA-256 of the input, the output and the effective settings
	BaseDigest     string `gorm:"type:varchar(64);index:idx_run_digest"`
	AfterDigest    string `gorm:"type:varchar(64)"`
	SettingsDigest string `gorm:"type:varchar(64);index:idx_run_digest"`

	Settings datatypes.JSON `gorm:"type:json"`

	Edits    int           `gorm:"default:0"`
	Status   string        `gorm:"type:varchar(20);not null;index"`
	Error    string        `gorm:"type:text"`
	Duration time.Duration `gorm:"default:0"`
}

func (Run) TableName() string { return "runs" }

// Changed reports whether the run rewrote the file.
func (r Run) Changed() bool { return r.Status == StatusFormatted }
