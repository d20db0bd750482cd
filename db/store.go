package db

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oxhq/ablfmt/models"
)

// Store records format runs.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn and wraps the connection in a Store.
func Open(dsn string, debug bool) (*Store, error) {
	db, err := Connect(dsn, debug)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores run, assigning an ID when it has none.
func (s *Store) Record(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		run.ID = id
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record run %s: %w", run.Path, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Run, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []models.Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Formatted reports whether content with digest is already the recorded
// output of a successful run under the same settings.
func (s *Store) Formatted(ctx context.Context, digest, settingsDigest string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Run{}).
		Where("after_digest = ? AND settings_digest = ?", digest, settingsDigest).
		Where("status IN ?", []string{models.StatusFormatted, models.StatusUnchanged}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup digest: %w", err)
	}
	return count > 0, nil
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SettingsJSON encodes settings with sorted keys along with their digest.
func SettingsJSON(settings map[string]any) (datatypes.JSON, string, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, "", fmt.Errorf("encode settings: %w", err)
	}
	return datatypes.JSON(data), Digest(data), nil
}

func newID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return "run_" + hex.EncodeToString(b[:]), nil
}
