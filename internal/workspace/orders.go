package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/internal/orders"
	"github.com/batiserv/batiserv-backend/pkg/enums"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// AddOrder creates zero, one or two order rows, one per non-blank
// reference number, sharing a single creation timestamp and carrying the
// assigned user's name as a snapshot. Both numbers blank is a no-op that
// succeeds with an empty result.
func (c *Controller) AddOrder(ctx context.Context, customerID, siteID uuid.UUID, framesNumber, doorsNumber string, userID uuid.UUID) ([]types.OrderView, error) {
	framesNumber = strings.TrimSpace(framesNumber)
	doorsNumber = strings.TrimSpace(doorsNumber)

	c.mu.RLock()
	known := c.findSiteLocked(customerID, siteID) != nil
	c.mu.RUnlock()
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}

	if framesNumber == "" && doorsNumber == "" {
		return []types.OrderView{}, nil
	}

	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assigned user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading assigned user")
	}

	lock := c.locks.For(siteID)
	lock.Lock()
	defer lock.Unlock()

	rows, err := c.orders.CreateBatch(ctx, orders.CreateOrdersDTO{
		SiteID:       siteID,
		FramesNumber: framesNumber,
		DoorsNumber:  doorsNumber,
		UserID:       user.ID,
		UserName:     user.Name,
	}, c.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating orders")
	}

	views := make([]types.OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, orderView(&rows[i]))
	}

	c.mu.Lock()
	if site := c.findSiteLocked(customerID, siteID); site != nil {
		site.Orders = append(site.Orders, views...)
	}
	c.mu.Unlock()

	return views, nil
}

// UpdateOrderPart applies one patch to the named part of an order and
// mirrors the result. The sibling part is never touched.
func (c *Controller) UpdateOrderPart(ctx context.Context, customerID, siteID, orderID uuid.UUID, kind enums.OrderPartKind, patch orders.PartPatch) (*types.OrderView, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order part")
	}

	if patch.User != nil {
		user, err := c.users.FindByID(ctx, patch.User.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assigned user not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading assigned user")
		}
		// Snapshot the name at reassignment time.
		patch.User.Name = user.Name
	}

	lock := c.locks.For(orderID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	known := c.findOrderLocked(customerID, siteID, orderID) != nil
	c.mu.RUnlock()
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	row, err := c.orders.UpdatePart(ctx, orderID, kind, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order part not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order")
	}

	updated := orderView(row)

	c.mu.Lock()
	if node := c.findOrderLocked(customerID, siteID, orderID); node != nil {
		*node = *cloneOrderView(&updated)
	}
	c.mu.Unlock()

	return &updated, nil
}

// DeleteOrder removes one order remotely, then from the mirror.
func (c *Controller) DeleteOrder(ctx context.Context, customerID, siteID, orderID uuid.UUID) error {
	lock := c.locks.For(orderID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	known := c.findOrderLocked(customerID, siteID, orderID) != nil
	c.mu.RUnlock()
	if !known {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if err := c.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting order")
	}

	c.mu.Lock()
	if site := c.findSiteLocked(customerID, siteID); site != nil {
		for i := range site.Orders {
			if site.Orders[i].ID == orderID {
				site.Orders = append(site.Orders[:i], site.Orders[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	return nil
}
