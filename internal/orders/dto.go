package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
)

// CreateOrdersDTO describes one add-order request. A non-empty frames
// number and a non-empty doors number each yield their own order row.
type CreateOrdersDTO struct {
	SiteID       uuid.UUID
	FramesNumber string
	DoorsNumber  string
	UserID       uuid.UUID
	UserName     string
}

// NewPart builds a fresh unsent part for the given reference number.
func (d CreateOrdersDTO) NewPart(number string, at time.Time) dbtypes.OrderPart {
	return dbtypes.OrderPart{
		Number:       strings.TrimSpace(number),
		IsSent:       false,
		CreationDate: at,
		UserID:       d.UserID,
		UserName:     d.UserName,
		Notes:        "",
	}
}

// PartPatch carries the mutations applicable to one part of an order.
// Exactly one field is set per operation: the caller toggles send-status,
// renumbers, reassigns, or edits notes, never several at once.
type PartPatch struct {
	ToggleSent bool
	Number     *string
	User       *PartUser
	Notes      *string
}

// PartUser is a user assignment with the denormalized name snapshot taken
// at patch time.
type PartUser struct {
	ID   uuid.UUID
	Name string
}
