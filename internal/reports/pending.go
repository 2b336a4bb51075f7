package reports

import (
	"github.com/google/uuid"

	"github.com/batiserv/batiserv-backend/pkg/enums"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// PendingOrders flattens every unsent order part across the tree into
// independent records, in natural flatten order: customers as given, their
// sites in order, each order's frames part before its doors part.
func PendingOrders(tree []types.CustomerTree) []types.PendingOrderRecord {
	out := []types.PendingOrderRecord{}
	for _, customer := range tree {
		for _, site := range customer.Sites {
			for _, order := range site.Orders {
				if order.Frames != nil && !order.Frames.IsSent {
					out = append(out, pendingRecord(customer, site, order, enums.OrderPartFrames))
				}
				if order.Doors != nil && !order.Doors.IsSent {
					out = append(out, pendingRecord(customer, site, order, enums.OrderPartDoors))
				}
			}
		}
	}
	return out
}

// FilterPendingByUser keeps only the records assigned to the given user.
func FilterPendingByUser(records []types.PendingOrderRecord, userID uuid.UUID) []types.PendingOrderRecord {
	out := []types.PendingOrderRecord{}
	for _, record := range records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out
}

func pendingRecord(customer types.CustomerTree, site types.SiteTree, order types.OrderView, kind enums.OrderPartKind) types.PendingOrderRecord {
	part := order.Frames
	if kind == enums.OrderPartDoors {
		part = order.Doors
	}
	return types.PendingOrderRecord{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		SiteID:       site.ID,
		SiteName:     site.Name,
		OrderID:      order.ID,
		Part:         kind.String(),
		Number:       part.Number,
		CreationDate: part.CreationDate,
		UserID:       part.UserID,
		UserName:     part.UserName,
		Notes:        part.Notes,
	}
}
