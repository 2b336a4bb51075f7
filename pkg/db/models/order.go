package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	"github.com/batiserv/batiserv-backend/pkg/enums"
)

// Order is the unit of identity for a door/frame order. Each part is
// nullable and tracked independently; at least one part is present at
// creation time.
type Order struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SiteID    uuid.UUID          `gorm:"column:site_id;type:uuid;not null;index"`
	Frames    *dbtypes.OrderPart `gorm:"column:frames;type:jsonb"`
	Doors     *dbtypes.OrderPart `gorm:"column:doors;type:jsonb"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Part returns a pointer to the requested part, nil when absent.
func (o *Order) Part(kind enums.OrderPartKind) *dbtypes.OrderPart {
	switch kind {
	case enums.OrderPartFrames:
		return o.Frames
	case enums.OrderPartDoors:
		return o.Doors
	default:
		return nil
	}
}
