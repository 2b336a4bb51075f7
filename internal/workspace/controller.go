package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/internal/customers"
	"github.com/batiserv/batiserv-backend/internal/files"
	"github.com/batiserv/batiserv-backend/internal/options"
	"github.com/batiserv/batiserv-backend/internal/orders"
	"github.com/batiserv/batiserv-backend/internal/sites"
	"github.com/batiserv/batiserv-backend/pkg/db/models"
	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	"github.com/batiserv/batiserv-backend/pkg/enums"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// Gateway-facing dependencies. The mirror is only patched after the
// corresponding store call has confirmed.

type customersRepo interface {
	List(ctx context.Context) ([]models.Customer, error)
	Create(ctx context.Context, dto customers.CreateCustomerDTO) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, dto customers.UpdateCustomerDTO) (*models.Customer, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type sitesRepo interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Site, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
	Create(ctx context.Context, dto sites.CreateSiteDTO) (*models.Site, error)
	Update(ctx context.Context, id uuid.UUID, dto sites.UpdateSiteDTO) (*models.Site, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type ordersRepo interface {
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Order, error)
	CreateBatch(ctx context.Context, dto orders.CreateOrdersDTO, now time.Time) ([]models.Order, error)
	UpdatePart(ctx context.Context, id uuid.UUID, kind enums.OrderPartKind, patch orders.PartPatch) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySite(ctx context.Context, tx *gorm.DB, siteID uuid.UUID) error
}

type optionsRepo interface {
	List(ctx context.Context) ([]models.SpecialOption, error)
	Create(ctx context.Context, dto options.CreateOptionDTO) (*models.SpecialOption, error)
	Update(ctx context.Context, id uuid.UUID, dto options.UpdateOptionDTO) (*models.SpecialOption, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type usersLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type filesGateway interface {
	AttachToSite(ctx context.Context, siteID uuid.UUID, input files.UploadInput) (*dbtypes.UploadedFile, error)
	DetachFromSite(ctx context.Context, siteID uuid.UUID, url string) error
	AttachToOption(ctx context.Context, optionID uuid.UUID, input files.UploadInput) (*dbtypes.UploadedFile, error)
	DetachFromOption(ctx context.Context, optionID uuid.UUID, url string) error
	CleanupObjects(ctx context.Context, lists ...dbtypes.FileList) error
}

// Controller owns the in-memory mirror of the customer tree and the
// special options, serves all reads from it, and forwards every mutation
// to the gateway before patching the mirror.
type Controller struct {
	customers customersRepo
	sites     sitesRepo
	orders    ordersRepo
	options   optionsRepo
	users     usersLookup
	tx        txRunner
	files     filesGateway
	logg      *logger.Logger

	locks *entityLocks
	now   func() time.Time

	mu      sync.RWMutex
	tree    []types.CustomerTree
	optView []types.OptionView
	loaded  bool
}

// NewController wires the controller against the gateway repositories.
func NewController(
	customersRepo customersRepo,
	sitesRepo sitesRepo,
	ordersRepo ordersRepo,
	optionsRepo optionsRepo,
	users usersLookup,
	tx txRunner,
	filesSvc filesGateway,
	logg *logger.Logger,
) (*Controller, error) {
	if customersRepo == nil || sitesRepo == nil || ordersRepo == nil || optionsRepo == nil {
		return nil, fmt.Errorf("gateway repositories required")
	}
	if users == nil {
		return nil, fmt.Errorf("users lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if filesSvc == nil {
		return nil, fmt.Errorf("files gateway required")
	}
	return &Controller{
		customers: customersRepo,
		sites:     sitesRepo,
		orders:    ordersRepo,
		options:   optionsRepo,
		users:     users,
		tx:        tx,
		files:     filesSvc,
		logg:      logg,
		locks:     newEntityLocks(),
		now:       time.Now,
	}, nil
}

// Load populates the mirror: customers with full fan-out plus the options
// catalog. Sibling subtrees load in parallel, nesting stays sequential
// per level.
func (c *Controller) Load(ctx context.Context) error {
	customerRows, err := c.customers.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customers")
	}

	tree := make([]types.CustomerTree, len(customerRows))
	group, groupCtx := errgroup.WithContext(ctx)
	for i := range customerRows {
		i := i
		group.Go(func() error {
			node, err := c.loadCustomerSubtree(groupCtx, customerRows[i])
			if err != nil {
				return err
			}
			tree[i] = node
			return nil
		})
	}

	var optionRows []models.SpecialOption
	group.Go(func() error {
		rows, err := c.options.List(groupCtx)
		if err != nil {
			return err
		}
		optionRows = rows
		return nil
	})

	if err := group.Wait(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading workspace")
	}

	optView := make([]types.OptionView, 0, len(optionRows))
	for i := range optionRows {
		optView = append(optView, optionView(&optionRows[i]))
	}

	c.mu.Lock()
	c.tree = tree
	c.optView = optView
	c.loaded = true
	c.mu.Unlock()

	if c.logg != nil {
		c.logg.Info(ctx, "workspace loaded")
	}
	return nil
}

func (c *Controller) loadCustomerSubtree(ctx context.Context, row models.Customer) (types.CustomerTree, error) {
	node := customerView(&row)

	siteRows, err := c.sites.ListByCustomer(ctx, row.ID)
	if err != nil {
		return types.CustomerTree{}, err
	}

	node.Sites = make([]types.SiteTree, len(siteRows))
	group, groupCtx := errgroup.WithContext(ctx)
	for i := range siteRows {
		i := i
		group.Go(func() error {
			siteNode := siteView(&siteRows[i])
			orderRows, err := c.orders.ListBySite(groupCtx, siteRows[i].ID)
			if err != nil {
				return err
			}
			siteNode.Orders = make([]types.OrderView, 0, len(orderRows))
			for j := range orderRows {
				siteNode.Orders = append(siteNode.Orders, orderView(&orderRows[j]))
			}
			node.Sites[i] = siteNode
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return types.CustomerTree{}, err
	}
	return node, nil
}

// Tree returns a deep copy of the customer tree.
func (c *Controller) Tree() []types.CustomerTree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyTree(c.tree)
}

// Options returns a copy of the special options view.
func (c *Controller) Options() []types.OptionView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.OptionView, len(c.optView))
	for i, opt := range c.optView {
		opt.Files = append(dbtypes.FileList{}, opt.Files...)
		out[i] = opt
	}
	return out
}

// Loaded reports whether the initial load has completed.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// view builders

func customerView(row *models.Customer) types.CustomerTree {
	return types.CustomerTree{
		ID:    row.ID,
		Name:  row.Name,
		Notes: row.Notes,
		Sites: []types.SiteTree{},
	}
}

func siteView(row *models.Site) types.SiteTree {
	files := row.GeneralInfoFiles
	if files == nil {
		files = dbtypes.FileList{}
	}
	return types.SiteTree{
		ID:               row.ID,
		CustomerID:       row.CustomerID,
		Name:             row.Name,
		GeneralInfo:      row.GeneralInfo,
		GeneralInfoFiles: files,
		Orders:           []types.OrderView{},
	}
}

func orderView(row *models.Order) types.OrderView {
	view := types.OrderView{ID: row.ID, SiteID: row.SiteID}
	if row.Frames != nil {
		frames := *row.Frames
		view.Frames = &frames
	}
	if row.Doors != nil {
		doors := *row.Doors
		view.Doors = &doors
	}
	return view
}

func optionView(row *models.SpecialOption) types.OptionView {
	files := row.Files
	if files == nil {
		files = dbtypes.FileList{}
	}
	return types.OptionView{
		ID:      row.ID,
		Name:    row.Name,
		Details: row.Details,
		Files:   files,
	}
}

func copyTree(tree []types.CustomerTree) []types.CustomerTree {
	out := make([]types.CustomerTree, len(tree))
	for i, customer := range tree {
		customerCopy := customer
		customerCopy.Sites = make([]types.SiteTree, len(customer.Sites))
		for j, site := range customer.Sites {
			siteCopy := site
			siteCopy.GeneralInfoFiles = append(dbtypes.FileList{}, site.GeneralInfoFiles...)
			siteCopy.Orders = make([]types.OrderView, len(site.Orders))
			for k, order := range site.Orders {
				siteCopy.Orders[k] = *cloneOrderView(&order)
			}
			customerCopy.Sites[j] = siteCopy
		}
		out[i] = customerCopy
	}
	return out
}

func cloneOrderView(order *types.OrderView) *types.OrderView {
	clone := types.OrderView{ID: order.ID, SiteID: order.SiteID}
	if order.Frames != nil {
		frames := *order.Frames
		clone.Frames = &frames
	}
	if order.Doors != nil {
		doors := *order.Doors
		clone.Doors = &doors
	}
	return &clone
}

// mirror lookups, callers hold at least the read lock

func (c *Controller) findCustomerLocked(id uuid.UUID) *types.CustomerTree {
	for i := range c.tree {
		if c.tree[i].ID == id {
			return &c.tree[i]
		}
	}
	return nil
}

func (c *Controller) findSiteLocked(customerID, siteID uuid.UUID) *types.SiteTree {
	customer := c.findCustomerLocked(customerID)
	if customer == nil {
		return nil
	}
	for i := range customer.Sites {
		if customer.Sites[i].ID == siteID {
			return &customer.Sites[i]
		}
	}
	return nil
}

func (c *Controller) findOrderLocked(customerID, siteID, orderID uuid.UUID) *types.OrderView {
	site := c.findSiteLocked(customerID, siteID)
	if site == nil {
		return nil
	}
	for i := range site.Orders {
		if site.Orders[i].ID == orderID {
			return &site.Orders[i]
		}
	}
	return nil
}

func (c *Controller) findOptionLocked(id uuid.UUID) *types.OptionView {
	for i := range c.optView {
		if c.optView[i].ID == id {
			return &c.optView[i]
		}
	}
	return nil
}
