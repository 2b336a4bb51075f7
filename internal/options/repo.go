package options

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/pkg/db/models"
	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
)

// Repository exposes special-option persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an options repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every special option ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.SpecialOption, error) {
	var rows []models.SpecialOption
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single option.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SpecialOption, error) {
	var row models.SpecialOption
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new option with an empty file list.
func (r *Repository) Create(ctx context.Context, dto CreateOptionDTO) (*models.SpecialOption, error) {
	row := &models.SpecialOption{
		Name:    dto.Name,
		Details: dto.Details,
		Files:   dbtypes.FileList{},
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update applies the non-nil patch fields and returns the fresh row. Details
// and the file list never move together, each has its own mutation path.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateOptionDTO) (*models.SpecialOption, error) {
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Details != nil {
		updates["details"] = *dto.Details
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.SpecialOption{}).
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

// Delete removes the option row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SpecialOption{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendFile adds one descriptor to the option's file list. On Postgres this
// is a single-statement jsonb append; elsewhere it falls back to
// read-modify-write, which can lose a concurrent sibling append.
func (r *Repository) AppendFile(ctx context.Context, id uuid.UUID, file dbtypes.UploadedFile) error {
	if r.db.Dialector.Name() == "postgres" {
		element, err := dbtypes.FileList{file}.Value()
		if err != nil {
			return err
		}
		result := r.db.WithContext(ctx).
			Model(&models.SpecialOption{}).
			Where("id = ?", id).
			Update("files", gorm.Expr("files || ?::jsonb", element))
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
		Model(&models.SpecialOption{}).
		Where("id = ?", id).
		Update("files", append(row.Files, file)).Error
}

// RemoveFileByURL drops the descriptor whose url matches. On Postgres the
// filter runs server-side in one statement.
func (r *Repository) RemoveFileByURL(ctx context.Context, id uuid.UUID, url string) error {
	if r.db.Dialector.Name() == "postgres" {
		result := r.db.WithContext(ctx).
			Model(&models.SpecialOption{}).
			Where("id = ?", id).
			Update("files", gorm.Expr(
				`COALESCE((SELECT jsonb_agg(e) FROM jsonb_array_elements(files) AS e WHERE e->>'url' <> ?), '[]'::jsonb)`,
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
	remaining, removed := row.Files.WithoutURL(url)
	if !removed {
		return gorm.ErrRecordNotFound
	}
	return r.db.WithContext(ctx).
		Model(&models.SpecialOption{}).
		Where("id = ?", id).
		Update("files", remaining).Error
}
