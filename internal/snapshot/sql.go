package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/almahra/storefront/internal/cart"
	"github.com/almahra/storefront/pkg/db/models"
)

// SQLStore keeps guest snapshots in the cart_snapshots table.
type SQLStore struct {
	db  *gorm.DB
	key string
}

// NewSQLStore binds the store to one snapshot key. When migrate is set the
// table is created or updated first.
func NewSQLStore(ctx context.Context, db *gorm.DB, key string, migrate bool) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db is required")
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, fmt.Errorf("snapshot key is required")
	}
	if migrate {
		if err := db.WithContext(ctx).AutoMigrate(&models.CartSnapshot{}); err != nil {
			return nil, fmt.Errorf("migrate cart snapshots: %w", err)
		}
	}
	return &SQLStore{db: db, key: trimmed}, nil
}

func (s *SQLStore) Load(ctx context.Context) (*cart.State, error) {
	var row models.CartSnapshot
	err := s.db.WithContext(ctx).Where("snapshot_key = ?", s.key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return decode([]byte(row.Payload))
}

func (s *SQLStore) Save(ctx context.Context, state cart.State) error {
	payload, err := encode(state)
	if err != nil {
		return err
	}
	row := models.CartSnapshot{
		SnapshotKey: s.key,
		Payload:     string(payload),
		ItemCount:   state.ItemCount,
		Total:       state.Total.String(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "item_count", "total", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
