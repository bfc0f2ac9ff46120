package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	row, err := toProductModel(product)
	if err != nil {
		return domain.Product{}, err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(row)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var row productModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, err
	}
	return toDomainProduct(row)
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	row, err := toProductModel(product)
	if err != nil {
		return domain.Product{}, err
	}
	res := r.db.WithContext(ctx).
		Model(&productModel{}).
		Where("id = ?", product.ID).
		Updates(productColumns(row))
	if res.Error != nil {
		return domain.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, product.ID)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&productModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productModel{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where("(name ILIKE ? OR document ->> 'description' ILIKE ?)", pattern, pattern)
	}
	var rows []productModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		product, err := toDomainProduct(row)
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	return out, nil
}

func (r *productRepository) RecordSale(ctx context.Context, id uuid.UUID, quantity, salePrice float64, at time.Time) (domain.Product, error) {
	var result domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row productModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		product, err := toDomainProduct(row)
		if err != nil {
			return err
		}
		if err := domain.RecordSale(&product, quantity, salePrice); err != nil {
			return err
		}
		product.LastUpdated = at
		updated, err := toProductModel(product)
		if err != nil {
			return err
		}
		if err := tx.Model(&productModel{}).Where("id = ?", id).Updates(productColumns(updated)).Error; err != nil {
			return err
		}
		result = product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return result, nil
}

func productColumns(row productModel) map[string]any {
	return map[string]any{
		"name":       row.Name,
		"category":   row.Category,
		"status":     row.Status,
		"document":   row.Document,
		"updated_at": row.UpdatedAt,
	}
}
