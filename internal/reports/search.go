package reports

import (
	"strings"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

const optionContext = "Special Options"

// Search runs a case-insensitive substring match over customer names, site
// names, order part numbers, and special option names/details. Results come
// back in discovery order. An empty query matches nothing.
func Search(tree []types.CustomerTree, options []types.OptionView, query string) []types.SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []types.SearchResult{}
	}

	out := []types.SearchResult{}

	for i := range tree {
		customer := tree[i]
		customerID := customer.ID
		if strings.Contains(strings.ToLower(customer.Name), needle) {
			out = append(out, types.SearchResult{
				Kind:       types.SearchResultCustomer,
				Label:      customer.Name,
				CustomerID: &customerID,
			})
		}
		for j := range customer.Sites {
			site := customer.Sites[j]
			siteID := site.ID
			if strings.Contains(strings.ToLower(site.Name), needle) {
				out = append(out, types.SearchResult{
					Kind:       types.SearchResultSite,
					Label:      site.Name,
					Context:    customer.Name,
					CustomerID: &customerID,
					SiteID:     &siteID,
				})
			}
			for k := range site.Orders {
				order := site.Orders[k]
				orderID := order.ID
				for _, part := range []*dbtypes.OrderPart{order.Frames, order.Doors} {
					if part == nil {
						continue
					}
					if strings.Contains(strings.ToLower(part.Number), needle) {
						out = append(out, types.SearchResult{
							Kind:       types.SearchResultOrder,
							Label:      part.Number,
							Context:    customer.Name + " / " + site.Name,
							CustomerID: &customerID,
							SiteID:     &siteID,
							OrderID:    &orderID,
						})
					}
				}
			}
		}
	}

	for i := range options {
		option := options[i]
		optionID := option.ID
		if strings.Contains(strings.ToLower(option.Name), needle) ||
			strings.Contains(strings.ToLower(option.Details), needle) {
			out = append(out, types.SearchResult{
				Kind:     types.SearchResultOption,
				Label:    option.Name,
				Context:  optionContext,
				OptionID: &optionID,
			})
		}
	}

	return out
}
