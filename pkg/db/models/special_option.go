package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
)

// SpecialOption is a standalone catalog entry, not owned by any customer.
type SpecialOption struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	Details   string           `gorm:"column:details;not null;default:''"`
	Files     dbtypes.FileList `gorm:"column:files;type:jsonb;not null;default:'[]'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
