package workspace

import (
	"github.com/google/uuid"

	"github.com/batiserv/batiserv-backend/internal/reports"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// PendingOrders flattens every unsent order part out of the mirrored tree.
func (c *Controller) PendingOrders() []types.PendingOrderRecord {
	return reports.PendingOrders(c.Tree())
}

// PendingOrdersForUser narrows the pending list to one assignee.
func (c *Controller) PendingOrdersForUser(userID uuid.UUID) []types.PendingOrderRecord {
	return reports.FilterPendingByUser(reports.PendingOrders(c.Tree()), userID)
}

// PendingDigestMailto renders the pending summary as a mailto link body.
func (c *Controller) PendingDigestMailto() string {
	return reports.PendingDigestMailto(reports.PendingOrders(c.Tree()))
}

// PendingDigestMailtoForUser renders the digest for one assignee's
// pending parts only.
func (c *Controller) PendingDigestMailtoForUser(userID uuid.UUID) string {
	return reports.PendingDigestMailto(c.PendingOrdersForUser(userID))
}

// Search runs the free-text search over the mirrored tree and options.
func (c *Controller) Search(query string) []types.SearchResult {
	return reports.Search(c.Tree(), c.Options(), query)
}

// ExportCSV renders the mirrored tree as a CSV document. An empty
// selection exports every customer.
func (c *Controller) ExportCSV(selected []uuid.UUID) (body string, filename string) {
	return reports.ExportCSV(c.Tree(), selected), reports.ExportFileName(c.now())
}
