package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

// CreateProduct normalizes a loosely typed body, derives the pricing fields,
// validates the result and only then stores the accompanying files.
func (s *Service) CreateProduct(ctx context.Context, actor domain.Actor, body []byte, uploads []ports.FileUpload) (domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return domain.Product{}, err
	}
	if !domain.CanCreateProduct(actor) {
		return domain.Product{}, domain.ErrForbidden
	}

	product, err := domain.NormalizeProductPayload(body)
	if err != nil {
		return domain.Product{}, err
	}
	now := s.nowFn()
	product.ID = uuid.New()
	product.OwnerID = actor.AccountID
	product.SalesCount = 0
	product.Revenue = 0
	product.CreatedAt = now
	product.LastUpdated = now
	domain.DeriveProductPricing(&product)
	if err := domain.ValidateProduct(product); err != nil {
		return domain.Product{}, err
	}

	stored, err := s.storeUploads(ctx, uploads, domain.ProductUploadFields)
	if err != nil {
		return domain.Product{}, err
	}
	for _, u := range stored {
		product.AttachUpload(u)
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		s.discardUploads(ctx, stored)
		return domain.Product{}, err
	}
	return created, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, req ProductListRequest) ([]domain.Product, error) {
	return s.products.List(ctx, ports.ProductFilter{
		Category: strings.TrimSpace(req.Category),
		OwnerID:  req.OwnerID,
		Status:   domain.ProductStatus(strings.TrimSpace(req.Status)),
		Search:   strings.TrimSpace(req.Search),
	})
}

// UpdateProduct decodes body over the stored product. Identity, ownership and
// sales totals are not client-settable.
func (s *Service) UpdateProduct(ctx context.Context, actor domain.Actor, id uuid.UUID, body []byte, uploads []ports.FileUpload) (domain.Product, error) {
	current, err := s.manageableProduct(ctx, actor, id)
	if err != nil {
		return domain.Product{}, err
	}

	product := current.Clone()
	if err := domain.ApplyProductPayload(&product, body); err != nil {
		return domain.Product{}, err
	}
	product.ID = current.ID
	product.OwnerID = current.OwnerID
	product.CreatedAt = current.CreatedAt
	product.SalesCount = current.SalesCount
	product.Revenue = current.Revenue
	product.LastUpdated = s.nowFn()
	domain.DeriveProductPricing(&product)
	if err := domain.ValidateProduct(product); err != nil {
		return domain.Product{}, err
	}

	stored, err := s.storeUploads(ctx, uploads, domain.ProductUploadFields)
	if err != nil {
		return domain.Product{}, err
	}
	replaced := make([]string, 0, len(stored))
	for _, u := range stored {
		if old := uploadPath(current, u.Field); old != "" && old != u.Path {
			replaced = append(replaced, old)
		}
		product.AttachUpload(u)
	}

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		s.discardUploads(ctx, stored)
		return domain.Product{}, err
	}
	for _, path := range replaced {
		s.removeStoredFile(ctx, path)
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	product, err := s.manageableProduct(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	for _, field := range domain.ProductUploadFields {
		s.removeStoredFile(ctx, uploadPath(product, field))
	}
	return nil
}

// RecordSale adds one sale to the product totals.
func (s *Service) RecordSale(ctx context.Context, actor domain.Actor, id uuid.UUID, quantity, salePrice float64) (domain.Product, error) {
	current, err := s.manageableProduct(ctx, actor, id)
	if err != nil {
		return domain.Product{}, err
	}
	// reject bad input before taking the row lock
	if err := domain.RecordSale(&current, quantity, salePrice); err != nil {
		return domain.Product{}, err
	}
	updated, err := s.products.RecordSale(ctx, id, quantity, salePrice, s.nowFn())
	if err != nil {
		return domain.Product{}, err
	}
	s.enqueueEvent(ctx, eventTypeProductSaleRecorded, updated.ID.String(), map[string]any{
		"product_id":  updated.ID,
		"owner_id":    updated.OwnerID,
		"quantity":    quantity,
		"sale_price":  salePrice,
		"sales_count": updated.SalesCount,
		"revenue":     updated.Revenue,
	})
	return updated, nil
}

func (s *Service) manageableProduct(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return domain.Product{}, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !domain.CanManageProduct(actor, product) {
		return domain.Product{}, domain.ErrForbidden
	}
	return product, nil
}

func uploadPath(p domain.Product, field domain.UploadField) string {
	switch field {
	case domain.UploadProductImage:
		return p.ImageURL
	case domain.UploadIngredientsLabel:
		return p.Packaging.Ingredients.IngredientsLabelImage
	case domain.UploadNutritionalLabel:
		return p.Packaging.NutritionalInfo.NutritionalLabelImage
	case domain.UploadElevatorPitch:
		return p.Marketing.ElevatorPitchFile
	case domain.UploadSellSheet:
		return p.Marketing.SellSheetFile
	case domain.UploadPresentation:
		return p.Marketing.PresentationFile
	default:
		return ""
	}
}
