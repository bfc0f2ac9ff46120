package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
	"gorm.io/gorm"
)

type brandRepository struct {
	db *gorm.DB
}

func (r *brandRepository) Create(ctx context.Context, brand domain.Brand) (domain.Brand, error) {
	row, err := toBrandModel(brand)
	if err != nil {
		return domain.Brand{}, err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Brand{}, err
	}
	return toDomainBrand(row)
}

func (r *brandRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Brand, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByOwner returns the owner's oldest brand.
func (r *brandRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (domain.Brand, error) {
	return r.take(r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC"))
}

func (r *brandRepository) take(q *gorm.DB) (domain.Brand, error) {
	var row brandModel
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Brand{}, domain.ErrNotFound
		}
		return domain.Brand{}, err
	}
	return toDomainBrand(row)
}

func (r *brandRepository) Update(ctx context.Context, brand domain.Brand) (domain.Brand, error) {
	row, err := toBrandModel(brand)
	if err != nil {
		return domain.Brand{}, err
	}
	res := r.db.WithContext(ctx).
		Model(&brandModel{}).
		Where("id = ?", brand.ID).
		Updates(map[string]any{
			"name":       row.Name,
			"status":     row.Status,
			"document":   row.Document,
			"updated_at": row.UpdatedAt,
		})
	if res.Error != nil {
		return domain.Brand{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Brand{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, brand.ID)
}

func (r *brandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&brandModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *brandRepository) List(ctx context.Context, filter ports.BrandFilter) ([]domain.Brand, error) {
	q := r.db.WithContext(ctx).Model(&brandModel{})
	if filter.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Category != "" {
		contains, err := json.Marshal([]string{filter.Category})
		if err != nil {
			return nil, err
		}
		q = q.Where("document -> 'categories' @> ?::jsonb", string(contains))
	}
	var rows []brandModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Brand, 0, len(rows))
	for _, row := range rows {
		brand, err := toDomainBrand(row)
		if err != nil {
			return nil, err
		}
		out = append(out, brand)
	}
	return out, nil
}
