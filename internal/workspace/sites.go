package workspace

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/internal/files"
	"github.com/batiserv/batiserv-backend/internal/sites"
	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// AddSite creates the site remotely and attaches it to the mirrored
// customer, preserving the name ordering of the sites list.
func (c *Controller) AddSite(ctx context.Context, customerID uuid.UUID, name, generalInfo string) (*types.SiteTree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site name is required")
	}

	c.mu.RLock()
	known := c.findCustomerLocked(customerID) != nil
	c.mu.RUnlock()
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	row, err := c.sites.Create(ctx, sites.CreateSiteDTO{
		CustomerID:  customerID,
		Name:        name,
		GeneralInfo: generalInfo,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating site")
	}

	node := siteView(row)

	c.mu.Lock()
	customer := c.findCustomerLocked(customerID)
	if customer != nil {
		customer.Sites = append(customer.Sites, node)
		sort.SliceStable(customer.Sites, func(i, j int) bool {
			return customer.Sites[i].Name < customer.Sites[j].Name
		})
	}
	c.mu.Unlock()

	return &node, nil
}

// UpdateSite patches scalar fields remotely, then mirrors them. The file
// list and orders of the mirrored node stay untouched.
func (c *Controller) UpdateSite(ctx context.Context, customerID, siteID uuid.UUID, patch sites.UpdateSiteDTO) (*types.SiteTree, error) {
	lock := c.locks.For(siteID)
	lock.Lock()
	defer lock.Unlock()

	row, err := c.sites.Update(ctx, siteID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating site")
	}

	c.mu.Lock()
	node := c.findSiteLocked(customerID, siteID)
	var result *types.SiteTree
	if node != nil {
		node.Name = row.Name
		node.GeneralInfo = row.GeneralInfo
		clone := *node
		result = &clone
	}
	c.mu.Unlock()

	if result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}
	return result, nil
}

// DeleteSite removes the site's orders then the site, in one transaction,
// then prunes the mirror and best-effort deletes the attachment binaries.
func (c *Controller) DeleteSite(ctx context.Context, customerID, siteID uuid.UUID) error {
	lock := c.locks.For(siteID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	node := c.findSiteLocked(customerID, siteID)
	var fileList dbtypes.FileList
	if node != nil {
		fileList = append(dbtypes.FileList{}, node.GeneralInfoFiles...)
	}
	c.mu.RUnlock()

	if node == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}

	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := c.orders.DeleteBySite(ctx, tx, siteID); err != nil {
			return err
		}
		return c.sites.Delete(ctx, tx, siteID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting site")
	}

	c.mu.Lock()
	customer := c.findCustomerLocked(customerID)
	if customer != nil {
		for i := range customer.Sites {
			if customer.Sites[i].ID == siteID {
				customer.Sites = append(customer.Sites[:i], customer.Sites[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	if len(fileList) > 0 {
		c.cleanupBinaries(ctx, []dbtypes.FileList{fileList})
	}
	return nil
}

// AttachSiteFile uploads the binary and appends the descriptor to the
// site's file list, remotely first, then in the mirror.
func (c *Controller) AttachSiteFile(ctx context.Context, customerID, siteID uuid.UUID, input files.UploadInput) (*dbtypes.UploadedFile, error) {
	lock := c.locks.For(siteID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	known := c.findSiteLocked(customerID, siteID) != nil
	c.mu.RUnlock()
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}

	descriptor, err := c.files.AttachToSite(ctx, siteID, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if node := c.findSiteLocked(customerID, siteID); node != nil {
		node.GeneralInfoFiles = append(node.GeneralInfoFiles, *descriptor)
	}
	c.mu.Unlock()

	return descriptor, nil
}

// DetachSiteFile deletes the binary and drops the descriptor, remotely
// first, then in the mirror.
func (c *Controller) DetachSiteFile(ctx context.Context, customerID, siteID uuid.UUID, url string) error {
	lock := c.locks.For(siteID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	known := c.findSiteLocked(customerID, siteID) != nil
	c.mu.RUnlock()
	if !known {
		return pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}

	if err := c.files.DetachFromSite(ctx, siteID, url); err != nil {
		return err
	}

	c.mu.Lock()
	if node := c.findSiteLocked(customerID, siteID); node != nil {
		node.GeneralInfoFiles, _ = node.GeneralInfoFiles.WithoutURL(url)
	}
	c.mu.Unlock()

	return nil
}
