package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

var brandUploadFields = []domain.UploadField{domain.UploadBrandLogo}

// CreateBrand decodes body into a new brand owned by actor. An optional logo
// is stored alongside.
func (s *Service) CreateBrand(ctx context.Context, actor domain.Actor, body []byte, logo *ports.FileUpload) (domain.Brand, error) {
	if err := requireActor(actor); err != nil {
		return domain.Brand{}, err
	}
	if !domain.CanCreateBrand(actor) {
		return domain.Brand{}, domain.ErrForbidden
	}

	brand := domain.NewBrand()
	if err := domain.ApplyBrandPayload(&brand, body); err != nil {
		return domain.Brand{}, err
	}
	now := s.nowFn()
	brand.ID = uuid.New()
	brand.OwnerID = actor.AccountID
	brand.CreatedAt = now
	brand.UpdatedAt = now
	if err := domain.ValidateBrand(brand); err != nil {
		return domain.Brand{}, err
	}

	stored, err := s.storeLogo(ctx, logo)
	if err != nil {
		return domain.Brand{}, err
	}
	if stored != nil {
		brand.Logo = stored.Path
	}
	brand.RecordChange("Brand created", actor.AccountID, now)

	created, err := s.brands.Create(ctx, brand)
	if err != nil {
		if stored != nil {
			s.removeStoredFile(ctx, stored.Path)
		}
		return domain.Brand{}, err
	}
	s.brandChanged(ctx, created, "created")
	return created, nil
}

// GetBrand hides brands the actor may not see behind domain.ErrNotFound.
func (s *Service) GetBrand(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Brand, error) {
	brand, err := s.brands.GetByID(ctx, id)
	if err != nil {
		return domain.Brand{}, err
	}
	if !domain.CanSeeBrand(actor, brand) {
		return domain.Brand{}, domain.ErrNotFound
	}
	return brand.VisibleTo(actor), nil
}

func (s *Service) ListBrands(ctx context.Context, actor domain.Actor) ([]domain.Brand, error) {
	return s.listBrands(ctx, actor, ports.BrandFilter{})
}

func (s *Service) ListBrandsByCategory(ctx context.Context, actor domain.Actor, category string) ([]domain.Brand, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	return s.listBrands(ctx, actor, ports.BrandFilter{Category: category})
}

func (s *Service) listBrands(ctx context.Context, actor domain.Actor, filter ports.BrandFilter) ([]domain.Brand, error) {
	brands, err := s.brands.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Brand, 0, len(brands))
	for _, b := range brands {
		if domain.CanSeeBrand(actor, b) {
			out = append(out, b.VisibleTo(actor))
		}
	}
	return out, nil
}

func (s *Service) GetBrandByOwner(ctx context.Context, actor domain.Actor, ownerID uuid.UUID) (domain.Brand, error) {
	brand, err := s.brands.GetByOwner(ctx, ownerID)
	if err != nil {
		return domain.Brand{}, err
	}
	if !domain.CanSeeBrand(actor, brand) {
		return domain.Brand{}, domain.ErrNotFound
	}
	return brand.VisibleTo(actor), nil
}

// UpdateBrand merges body into the stored brand. A new logo replaces and
// removes the previous file.
func (s *Service) UpdateBrand(ctx context.Context, actor domain.Actor, id uuid.UUID, body []byte, logo *ports.FileUpload) (domain.Brand, error) {
	brand, err := s.manageableBrand(ctx, actor, id)
	if err != nil {
		return domain.Brand{}, err
	}
	if err := domain.ApplyBrandPayload(&brand, body); err != nil {
		return domain.Brand{}, err
	}
	if err := domain.ValidateBrand(brand); err != nil {
		return domain.Brand{}, err
	}

	stored, err := s.storeLogo(ctx, logo)
	if err != nil {
		return domain.Brand{}, err
	}
	previousLogo := brand.Logo
	if stored != nil {
		brand.Logo = stored.Path
	}
	now := s.nowFn()
	brand.UpdatedAt = now
	brand.RecordChange("Brand updated", actor.AccountID, now)

	updated, err := s.brands.Update(ctx, brand)
	if err != nil {
		if stored != nil {
			s.removeStoredFile(ctx, stored.Path)
		}
		return domain.Brand{}, err
	}
	if stored != nil && previousLogo != stored.Path {
		s.removeStoredFile(ctx, previousLogo)
	}
	s.brandChanged(ctx, updated, "updated")
	return updated, nil
}

func (s *Service) ToggleBrandStatus(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Brand, error) {
	brand, err := s.manageableBrand(ctx, actor, id)
	if err != nil {
		return domain.Brand{}, err
	}
	status := brand.ToggleStatus()
	now := s.nowFn()
	brand.UpdatedAt = now
	brand.RecordChange(fmt.Sprintf("Status changed to %s", status), actor.AccountID, now)

	updated, err := s.brands.Update(ctx, brand)
	if err != nil {
		return domain.Brand{}, err
	}
	s.brandChanged(ctx, updated, "status_changed")
	return updated, nil
}

// UploadBrandLogo returns the public path of the new logo.
func (s *Service) UploadBrandLogo(ctx context.Context, actor domain.Actor, id uuid.UUID, logo *ports.FileUpload) (string, error) {
	if logo == nil {
		return "", fmt.Errorf("%w: No file uploaded", domain.ErrValidation)
	}
	brand, err := s.manageableBrand(ctx, actor, id)
	if err != nil {
		return "", err
	}
	stored, err := s.storeLogo(ctx, logo)
	if err != nil {
		return "", err
	}
	previousLogo := brand.Logo
	brand.Logo = stored.Path
	now := s.nowFn()
	brand.UpdatedAt = now
	brand.RecordChange("Logo updated", actor.AccountID, now)

	updated, err := s.brands.Update(ctx, brand)
	if err != nil {
		s.removeStoredFile(ctx, stored.Path)
		return "", err
	}
	if previousLogo != stored.Path {
		s.removeStoredFile(ctx, previousLogo)
	}
	s.brandChanged(ctx, updated, "logo_updated")
	return updated.Logo, nil
}

// DeleteBrand is reserved to the owner and administrators.
func (s *Service) DeleteBrand(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	brand, err := s.brands.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanDeleteBrand(actor, brand) {
		return domain.ErrForbidden
	}
	if err := s.brands.Delete(ctx, id); err != nil {
		return err
	}
	s.removeStoredFile(ctx, brand.Logo)
	s.brandChanged(ctx, brand, "deleted")
	return nil
}

func (s *Service) manageableBrand(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Brand, error) {
	if err := requireActor(actor); err != nil {
		return domain.Brand{}, err
	}
	brand, err := s.brands.GetByID(ctx, id)
	if err != nil {
		return domain.Brand{}, err
	}
	if !domain.CanManageBrand(actor, brand) {
		return domain.Brand{}, domain.ErrForbidden
	}
	return brand, nil
}

func (s *Service) storeLogo(ctx context.Context, logo *ports.FileUpload) (*domain.StoredUpload, error) {
	if logo == nil {
		return nil, nil
	}
	upload := *logo
	upload.Field = string(domain.UploadBrandLogo)
	stored, err := s.storeUploads(ctx, []ports.FileUpload{upload}, brandUploadFields)
	if err != nil {
		return nil, err
	}
	return &stored[0], nil
}

func (s *Service) brandChanged(ctx context.Context, brand domain.Brand, change string) {
	s.enqueueEvent(ctx, eventTypeBrandChanged, brand.ID.String(), map[string]any{
		"brand_id": brand.ID,
		"owner_id": brand.OwnerID,
		"change":   change,
		"status":   brand.Status,
	})
}
