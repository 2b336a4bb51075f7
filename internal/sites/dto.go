package sites

import "github.com/google/uuid"

// CreateSiteDTO holds the fields required to persist a new site.
type CreateSiteDTO struct {
	CustomerID  uuid.UUID
	Name        string
	GeneralInfo string
}

// UpdateSiteDTO carries the optional fields of a site patch. The file list
// is mutated through the dedicated append/remove operations, never here.
type UpdateSiteDTO struct {
	Name        *string
	GeneralInfo *string
}
