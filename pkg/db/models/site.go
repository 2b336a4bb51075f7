package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
)

// Site is a construction site owned by exactly one customer. Its
// attachments are carried inline as a JSONB array rather than a
// separate table, matching the by-value ownership of the file list.
type Site struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID       uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Name             string           `gorm:"column:name;not null"`
	GeneralInfo      string           `gorm:"column:general_info;not null;default:''"`
	GeneralInfoFiles dbtypes.FileList `gorm:"column:general_info_files;type:jsonb;not null;default:'[]'"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
