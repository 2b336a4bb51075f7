package sites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/pkg/db/models"
	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
)

// Repository exposes construction-site persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sites repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByCustomer returns every site owned by the customer, ordered by name.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Site, error) {
	var rows []models.Site
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single site.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	var row models.Site
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new site with an empty file list.
func (r *Repository) Create(ctx context.Context, dto CreateSiteDTO) (*models.Site, error) {
	row := &models.Site{
		CustomerID:       dto.CustomerID,
		Name:             dto.Name,
		GeneralInfo:      dto.GeneralInfo,
		GeneralInfoFiles: dbtypes.FileList{},
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update applies the non-nil patch fields and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateSiteDTO) (*models.Site, error) {
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.GeneralInfo != nil {
		updates["general_info"] = *dto.GeneralInfo
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.Site{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the site row, optionally inside the caller's transaction.
// Owned orders must already be gone.
func (r *Repository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).Delete(&models.Site{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendFile adds one descriptor to the site's file list. On Postgres this
// is a single-statement jsonb append; elsewhere it falls back to
// read-modify-write, which can lose a concurrent sibling append.
func (r *Repository) AppendFile(ctx context.Context, id uuid.UUID, file dbtypes.UploadedFile) error {
	if r.db.Dialector.Name() == "postgres" {
		element, err := dbtypes.FileList{file}.Value()
		if err != nil {
			return err
		}
		result := r.db.WithContext(ctx).
			Model(&models.Site{}).
			Where("id = ?", id).
			Update("general_info_files", gorm.Expr("general_info_files || ?::jsonb", element))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	row, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.Site{}).
		Where("id = ?", id).
		Update("general_info_files", append(row.GeneralInfoFiles, file)).Error
}

// RemoveFileByURL drops the descriptor whose url matches. On Postgres the
// filter runs server-side in one statement.
func (r *Repository) RemoveFileByURL(ctx context.Context, id uuid.UUID, url string) error {
	if r.db.Dialector.Name() == "postgres" {
		result := r.db.WithContext(ctx).
			Model(&models.Site{}).
			Where("id = ?", id).
			Update("general_info_files", gorm.Expr(
				`COALESCE((SELECT jsonb_agg(e) FROM jsonb_array_elements(general_info_files) AS e WHERE e->>'url' <> ?), '[]'::jsonb)`,
				url,
			))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	row, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	remaining, removed := row.GeneralInfoFiles.WithoutURL(url)
	if !removed {
		return gorm.ErrRecordNotFound
	}
	return r.db.WithContext(ctx).
		Model(&models.Site{}).
		Where("id = ?", id).
		Update("general_info_files", remaining).Error
}
