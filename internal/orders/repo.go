package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/pkg/db/models"
	"github.com/batiserv/batiserv-backend/pkg/enums"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBySite returns the site's orders in insertion order.
func (r *Repository) ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateBatch inserts one order per non-blank reference number, all sharing
// the same creation timestamp. Blank numbers after trimming yield nothing.
func (r *Repository) CreateBatch(ctx context.Context, dto CreateOrdersDTO, now time.Time) ([]models.Order, error) {
	var rows []*models.Order
	if strings.TrimSpace(dto.FramesNumber) != "" {
		part := dto.NewPart(dto.FramesNumber, now)
		rows = append(rows, &models.Order{SiteID: dto.SiteID, Frames: &part})
	}
	if strings.TrimSpace(dto.DoorsNumber) != "" {
		part := dto.NewPart(dto.DoorsNumber, now)
		rows = append(rows, &models.Order{SiteID: dto.SiteID, Doors: &part})
	}
	if len(rows) == 0 {
		return []models.Order{}, nil
	}

	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

// UpdatePart applies the patch to the named part and returns the fresh row.
// Only the targeted part's column is written, the sibling column is never
// part of the statement.
func (r *Repository) UpdatePart(ctx context.Context, id uuid.UUID, kind enums.OrderPartKind, patch PartPatch) (*models.Order, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	part := row.Part(kind)
	if part == nil {
		return nil, gorm.ErrRecordNotFound
	}

	updated := *part
	switch {
	case patch.ToggleSent:
		updated.IsSent = !updated.IsSent
	case patch.Number != nil:
		updated.Number = strings.TrimSpace(*patch.Number)
	case patch.User != nil:
		updated.UserID = patch.User.ID
		updated.UserName = patch.User.Name
	case patch.Notes != nil:
		updated.Notes = *patch.Notes
	default:
		return row, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update(string(kind), &updated).Error; err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Delete removes a single order.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBySite removes every order belonging to the site in one statement,
// optionally inside the caller's transaction.
func (r *Repository) DeleteBySite(ctx context.Context, tx *gorm.DB, siteID uuid.UUID) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).Delete(&models.Order{}, "site_id = ?", siteID).Error
}
