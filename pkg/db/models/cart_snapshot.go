package models

import "time"

// CartSnapshot stores one serialized guest cart keyed by device or profile name.
type CartSnapshot struct {
	SnapshotKey string    `gorm:"column:snapshot_key;primaryKey;size:128"`
	Payload     string    `gorm:"column:payload;type:text;not null"`
	ItemCount   int       `gorm:"column:item_count;not null;default:0"`
	Total       string    `gorm:"column:total;not null;default:'0'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
