package docstore

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentModel is the GORM model for the documents table. The schema itself
// is owned by the migration scripts.
type DocumentModel struct {
	Collection string         `gorm:"column:collection;type:varchar(191);primaryKey"`
	ID         string         `gorm:"column:id;type:varchar(32);primaryKey"`
	SortKey    string         `gorm:"column:sort_key;type:varchar(255);not null"`
	Data       datatypes.JSON `gorm:"column:data;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// Document is a stored JSON payload addressed by collection path and id.
type Document struct {
	Collection string
	ID         string
	Data       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func toDocument(m *DocumentModel) Document {
	return Document{
		Collection: m.Collection,
		ID:         m.ID,
		Data:       []byte(m.Data),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
