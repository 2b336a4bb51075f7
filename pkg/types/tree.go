package types

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
)

// CustomerTree is the fully populated read model: a customer with its
// name-ordered sites, each carrying its orders. Partial updates return
// trees with empty child collections, only the scalar fields are fresh.
type CustomerTree struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Notes string     `json:"notes"`
	Sites []SiteTree `json:"sites"`
}

// SiteTree is a construction site with its attachments and orders.
type SiteTree struct {
	ID               uuid.UUID        `json:"id"`
	CustomerID       uuid.UUID        `json:"customer_id"`
	Name             string           `json:"name"`
	GeneralInfo      string           `json:"general_info"`
	GeneralInfoFiles dbtypes.FileList `json:"general_info_files"`
	Orders           []OrderView      `json:"orders"`
}

// OrderView is one order with its independent frames/doors parts.
type OrderView struct {
	ID     uuid.UUID          `json:"id"`
	SiteID uuid.UUID          `json:"site_id"`
	Frames *dbtypes.OrderPart `json:"frames"`
	Doors  *dbtypes.OrderPart `json:"doors"`
}

// OptionView is a special option with its attachments.
type OptionView struct {
	ID      uuid.UUID        `json:"id"`
	Name    string           `json:"name"`
	Details string           `json:"details"`
	Files   dbtypes.FileList `json:"files"`
}

// PendingOrderRecord is one unsent order part flattened out of the tree
// with enough parent identity to navigate back to it.
type PendingOrderRecord struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	SiteID       uuid.UUID `json:"site_id"`
	SiteName     string    `json:"site_name"`
	OrderID      uuid.UUID `json:"order_id"`
	Part         string    `json:"part"`
	Number       string    `json:"number"`
	CreationDate time.Time `json:"creation_date"`
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name"`
	Notes        string    `json:"notes"`
}

// SearchResultKind tags the entity type a search hit points at.
type SearchResultKind string

const (
	SearchResultCustomer SearchResultKind = "customer"
	SearchResultSite     SearchResultKind = "site"
	SearchResultOrder    SearchResultKind = "order"
	SearchResultOption   SearchResultKind = "option"
)

// SearchResult is one typed free-text hit, ranked by discovery order.
type SearchResult struct {
	Kind       SearchResultKind `json:"kind"`
	Label      string           `json:"label"`
	Context    string           `json:"context"`
	CustomerID *uuid.UUID       `json:"customer_id,omitempty"`
	SiteID     *uuid.UUID       `json:"site_id,omitempty"`
	OrderID    *uuid.UUID       `json:"order_id,omitempty"`
	OptionID   *uuid.UUID       `json:"option_id,omitempty"`
}
