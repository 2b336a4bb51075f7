package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

const (
	labelFrames  = "Huisseries"
	labelDoors   = "Portes"
	labelSent    = "Envoyée"
	labelPending = "En attente"

	// fr-FR locale timestamp, the format the exported dates were always
	// shown in. Not round-trippable without re-parsing this layout.
	frDateLayout = "02/01/2006 15:04:05"

	csvByteOrderMark = "\uFEFF"
)

var csvHeaders = []string{
	"CustomerID", "CustomerName", "CustomerNotes",
	"SiteID", "SiteName", "SiteGeneralInfo",
	"OrderID", "OrderPart", "OrderNumber",
	"OrderStatus", "OrderCreationDate", "OrderAssignedUser", "OrderNotes",
}

// ExportCSV serializes the selected customers into the fixed 13-column
// layout, one row per (customer, site, order part). Customers without sites
// and sites without orders still emit one row each with the remaining
// columns blank. An empty selection exports the whole tree. Output is
// BOM-prefixed and newline-separated; given the same tree and selection it
// is byte-identical.
func ExportCSV(tree []types.CustomerTree, selected []uuid.UUID) string {
	selectedSet := make(map[uuid.UUID]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}

	lines := []string{strings.Join(csvHeaders, ",")}

	for _, customer := range tree {
		if len(selectedSet) > 0 {
			if _, ok := selectedSet[customer.ID]; !ok {
				continue
			}
		}

		customerCells := []string{
			escapeCSVField(customer.ID.String()),
			escapeCSVField(customer.Name),
			escapeCSVField(customer.Notes),
		}

		if len(customer.Sites) == 0 {
			lines = append(lines, strings.Join(padRow(customerCells), ","))
			continue
		}

		for _, site := range customer.Sites {
			siteCells := append(append([]string{}, customerCells...),
				escapeCSVField(site.ID.String()),
				escapeCSVField(site.Name),
				escapeCSVField(site.GeneralInfo),
			)

			parts := flattenSiteParts(site)
			if len(parts) == 0 {
				lines = append(lines, strings.Join(padRow(siteCells), ","))
				continue
			}

			for _, p := range parts {
				row := append(append([]string{}, siteCells...),
					escapeCSVField(p.orderID.String()),
					escapeCSVField(p.label),
					escapeCSVField(p.part.Number),
					escapeCSVField(statusLabel(p.part.IsSent)),
					escapeCSVField(p.part.CreationDate.Format(frDateLayout)),
					escapeCSVField(p.part.UserName),
					escapeCSVField(p.part.Notes),
				)
				lines = append(lines, strings.Join(row, ","))
			}
		}
	}

	return csvByteOrderMark + strings.Join(lines, "\n")
}

// ExportFileName builds the dated download name for an export produced now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("export_batiserv_%s.csv", now.Format("2006-01-02"))
}

type flatPart struct {
	orderID uuid.UUID
	label   string
	part    dbtypes.OrderPart
}

func flattenSiteParts(site types.SiteTree) []flatPart {
	var out []flatPart
	for _, order := range site.Orders {
		if order.Frames != nil {
			out = append(out, flatPart{orderID: order.ID, label: labelFrames, part: *order.Frames})
		}
		if order.Doors != nil {
			out = append(out, flatPart{orderID: order.ID, label: labelDoors, part: *order.Doors})
		}
	}
	return out
}

func statusLabel(sent bool) string {
	if sent {
		return labelSent
	}
	return labelPending
}

func padRow(cells []string) []string {
	for len(cells) < len(csvHeaders) {
		cells = append(cells, "")
	}
	return cells
}

// escapeCSVField wraps values containing a comma, quote, or newline in
// double quotes with internal quotes doubled.
func escapeCSVField(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}
