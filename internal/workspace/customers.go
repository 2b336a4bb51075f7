package workspace

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/internal/customers"
	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// AddCustomer creates the customer remotely, then inserts it into the
// mirror keeping the name ordering. The fresh node has no sites by
// construction.
func (c *Controller) AddCustomer(ctx context.Context, name, notes string) (*types.CustomerTree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	row, err := c.customers.Create(ctx, customers.CreateCustomerDTO{Name: name, Notes: notes})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
	}

	node := customerView(row)

	c.mu.Lock()
	c.tree = append(c.tree, node)
	sort.SliceStable(c.tree, func(i, j int) bool { return c.tree[i].Name < c.tree[j].Name })
	c.mu.Unlock()

	return &node, nil
}

// UpdateCustomer patches scalar fields remotely, then mirrors them. The
// returned tree node keeps its child collections.
func (c *Controller) UpdateCustomer(ctx context.Context, id uuid.UUID, patch customers.UpdateCustomerDTO) (*types.CustomerTree, error) {
	lock := c.locks.For(id)
	lock.Lock()
	defer lock.Unlock()

	row, err := c.customers.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating customer")
	}

	c.mu.Lock()
	node := c.findCustomerLocked(id)
	if node != nil {
		node.Name = row.Name
		node.Notes = row.Notes
	}
	result := node
	if result != nil {
		clone := *result
		result = &clone
	}
	c.mu.Unlock()

	if result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return result, nil
}

// DeleteCustomer cascades in one transaction: every site's orders, every
// site, then the customer itself. Attachment binaries are cleaned up
// best-effort after the commit; their loss is logged, never fatal.
func (c *Controller) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	lock := c.locks.For(id)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	node := c.findCustomerLocked(id)
	var siteIDs []uuid.UUID
	var fileLists []dbtypes.FileList
	if node != nil {
		for _, site := range node.Sites {
			siteIDs = append(siteIDs, site.ID)
			if len(site.GeneralInfoFiles) > 0 {
				fileLists = append(fileLists, append(dbtypes.FileList{}, site.GeneralInfoFiles...))
			}
		}
	}
	c.mu.RUnlock()

	if node == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, siteID := range siteIDs {
			if err := c.orders.DeleteBySite(ctx, tx, siteID); err != nil {
				return err
			}
			if err := c.sites.Delete(ctx, tx, siteID); err != nil {
				return err
			}
		}
		return c.customers.Delete(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting customer")
	}

	c.mu.Lock()
	for i := range c.tree {
		if c.tree[i].ID == id {
			c.tree = append(c.tree[:i], c.tree[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.cleanupBinaries(ctx, fileLists)
	return nil
}

func (c *Controller) cleanupBinaries(ctx context.Context, lists []dbtypes.FileList) {
	if c.files == nil || len(lists) == 0 {
		return
	}
	if err := c.files.CleanupObjects(ctx, lists...); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "attachment binaries left behind after delete")
	}
}
