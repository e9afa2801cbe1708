// workers/export_cursor_store.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnings-bot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CursorStore persists export progress across restarts.
type CursorStore interface {
	LoadCursor(ctx context.Context, name string) (int64, error)
	SaveCursor(ctx context.Context, name string, seq int64) error
}

type GormCursorStore struct {
	db *gorm.DB
}

func NewGormCursorStore(db *gorm.DB) *GormCursorStore {
	return &GormCursorStore{db: db}
}

// LoadCursor returns 0 when the export has never run.
func (s *GormCursorStore) LoadCursor(ctx context.Context, name string) (int64, error) {
	var cur models.ExportCursor
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&cur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load export cursor %s: %w", name, err)
	}
	return cur.Seq, nil
}

func (s *GormCursorStore) SaveCursor(ctx context.Context, name string, seq int64) error {
	cur := models.ExportCursor{Name: name, Seq: seq, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"seq", "updated_at"}),
	}).Create(&cur).Error
	if err != nil {
		return fmt.Errorf("failed to save export cursor %s: %w", name, err)
	}
	return nil
}
