package workspace

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/internal/files"
	"github.com/batiserv/batiserv-backend/internal/options"
	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

// AddOption creates a special option remotely and inserts it into the
// mirrored list, preserving name ordering.
func (c *Controller) AddOption(ctx context.Context, name, details string) (*types.OptionView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name is required")
	}

	row, err := c.options.Create(ctx, options.CreateOptionDTO{
		Name:    name,
		Details: details,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating special option")
	}

	node := optionView(row)

	c.mu.Lock()
	c.optView = append(c.optView, node)
	sort.SliceStable(c.optView, func(i, j int) bool {
		return c.optView[i].Name < c.optView[j].Name
	})
	c.mu.Unlock()

	return &node, nil
}

// UpdateOption patches the scalar fields of an option. The file list is
// only mutated through the attach/detach operations.
func (c *Controller) UpdateOption(ctx context.Context, optionID uuid.UUID, patch options.UpdateOptionDTO) (*types.OptionView, error) {
	lock := c.locks.For(optionID)
	lock.Lock()
	defer lock.Unlock()

	row, err := c.options.Update(ctx, optionID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "special option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating special option")
	}

	c.mu.Lock()
	node := c.findOptionLocked(optionID)
	var result *types.OptionView
	if node != nil {
		node.Name = row.Name
		node.Details = row.Details
		clone := *node
		clone.Files = append(dbtypes.FileList{}, node.Files...)
		result = &clone
	}
	c.mu.Unlock()

	if result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "special option not found")
	}
	return result, nil
}

// DeleteOption removes the option remotely, prunes the mirror, then
// best-effort deletes the attachment binaries.
func (c *Controller) DeleteOption(ctx context.Context, optionID uuid.UUID) error {
	lock := c.locks.For(optionID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	node := c.findOptionLocked(optionID)
	var fileList dbtypes.FileList
	if node != nil {
		fileList = append(dbtypes.FileList{}, node.Files...)
	}
	c.mu.RUnlock()

	if node == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "special option not found")
	}

	if err := c.options.Delete(ctx, optionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "special option not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting special option")
	}

	c.mu.Lock()
	for i := range c.optView {
		if c.optView[i].ID == optionID {
			c.optView = append(c.optView[:i], c.optView[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if len(fileList) > 0 {
		c.cleanupBinaries(ctx, []dbtypes.FileList{fileList})
	}
	return nil
}

// AttachOptionFile uploads the binary and appends the descriptor to the
// option's file list, remotely first, then in the mirror.
func (c *Controller) AttachOptionFile(ctx context.Context, optionID uuid.UUID, input files.UploadInput) (*dbtypes.UploadedFile, error) {
	lock := c.locks.For(optionID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	known := c.findOptionLocked(optionID) != nil
	c.mu.RUnlock()
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "special option not found")
	}

	descriptor, err := c.files.AttachToOption(ctx, optionID, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if node := c.findOptionLocked(optionID); node != nil {
		node.Files = append(node.Files, *descriptor)
	}
	c.mu.Unlock()

	return descriptor, nil
}

// DetachOptionFile deletes the binary and drops the descriptor, remotely
// first, then in the mirror.
func (c *Controller) DetachOptionFile(ctx context.Context, optionID uuid.UUID, url string) error {
	lock := c.locks.For(optionID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	known := c.findOptionLocked(optionID) != nil
	c.mu.RUnlock()
	if !known {
		return pkgerrors.New(pkgerrors.CodeNotFound, "special option not found")
	}

	if err := c.files.DetachFromOption(ctx, optionID, url); err != nil {
		return err
	}

	c.mu.Lock()
	if node := c.findOptionLocked(optionID); node != nil {
		node.Files, _ = node.Files.WithoutURL(url)
	}
	c.mu.Unlock()

	return nil
}
