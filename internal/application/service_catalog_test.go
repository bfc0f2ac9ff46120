package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

func logoUpload() *ports.FileUpload {
	return &ports.FileUpload{
		OriginalName: "logo.png",
		ContentType:  "image/png",
		Size:         4,
		Body:         strings.NewReader("logo"),
	}
}

func TestBrandLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)

	brand, err := f.service.CreateBrand(ctx, owner, []byte(`{"name":"Acme","categories":"snacks,drinks","socialLinks":"{\"twitter\":\"@acme\"}"}`), logoUpload())
	if err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	if brand.OwnerID != owner.AccountID || brand.SocialLinks.Twitter != "@acme" {
		t.Fatalf("unexpected brand %+v", brand)
	}
	if !strings.HasPrefix(brand.Logo, "/uploads/logo/") || !f.files.has(brand.Logo) {
		t.Fatalf("expected stored logo, got %q", brand.Logo)
	}
	if len(brand.ChangeHistory) != 1 || brand.ChangeHistory[0].Action != "Brand created" {
		t.Fatalf("unexpected history %+v", brand.ChangeHistory)
	}

	updated, err := f.service.UpdateBrand(ctx, owner, brand.ID, []byte(`{"tagline":"Crunch"}`), nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Tagline != "Crunch" || updated.ChangeHistory[0].Action != "Brand updated" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	firstLogo := brand.Logo
	logo, err := f.service.UploadBrandLogo(ctx, owner, brand.ID, logoUpload())
	if err != nil {
		t.Fatalf("upload logo failed: %v", err)
	}
	if logo == firstLogo || f.files.has(firstLogo) || !f.files.has(logo) {
		t.Fatalf("expected old logo replaced and removed")
	}

	toggled, err := f.service.ToggleBrandStatus(ctx, owner, brand.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if toggled.Status != domain.BrandInactive || toggled.VisibilitySettings.IsPublic {
		t.Fatalf("expected inactive hidden brand, got %+v", toggled)
	}
	if toggled.ChangeHistory[0].Action != "Status changed to inactive" {
		t.Fatalf("unexpected history head %q", toggled.ChangeHistory[0].Action)
	}

	if _, err := f.service.GetBrand(ctx, domain.Actor{}, brand.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected inactive brand hidden from public, got %v", err)
	}
	listed, err := f.service.ListBrandsByCategory(ctx, owner, "drinks")
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected owner to see own inactive brand, got %d %v", len(listed), err)
	}

	if err := f.service.DeleteBrand(ctx, owner, brand.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if f.files.has(logo) {
		t.Fatalf("expected logo removed with brand")
	}
	if _, err := f.service.GetBrand(ctx, owner, brand.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted brand to be gone, got %v", err)
	}
}

func TestBrandAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)
	manager := f.actorWithRole(domain.RoleBrandManager)
	stranger := f.actorWithRole(domain.RoleBrandOwner)
	buyer := f.actorWithRole(domain.RoleBuyer)

	body := fmt.Sprintf(`{"name":"Acme","collaborators":[%q]}`, manager.AccountID)
	brand, err := f.service.CreateBrand(ctx, owner, []byte(body), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.service.CreateBrand(ctx, buyer, []byte(`{"name":"B"}`), nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected buyer to be forbidden, got %v", err)
	}
	if _, err := f.service.CreateBrand(ctx, domain.Actor{}, []byte(`{"name":"B"}`), nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected anonymous to be unauthorized, got %v", err)
	}
	if _, err := f.service.UpdateBrand(ctx, manager, brand.ID, []byte(`{"tagline":"x"}`), nil); err != nil {
		t.Fatalf("expected collaborator update to succeed, got %v", err)
	}
	if _, err := f.service.UpdateBrand(ctx, stranger, brand.ID, []byte(`{"tagline":"x"}`), nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected stranger to be forbidden, got %v", err)
	}
	if err := f.service.DeleteBrand(ctx, manager, brand.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected collaborator delete to be forbidden, got %v", err)
	}
	if _, err := f.service.CreateBrand(ctx, owner, []byte(`{"tagline":"no name"}`), nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBrandVisibilityForPublicReaders(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)

	brand, err := f.service.CreateBrand(ctx, owner, []byte(`{"name":"Acme","email":"hi@acme.test","visibilitySettings":{"showEmail":false}}`), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	public, err := f.service.GetBrand(ctx, domain.Actor{}, brand.ID)
	if err != nil {
		t.Fatalf("public get failed: %v", err)
	}
	if public.Email != "" {
		t.Fatalf("expected hidden email, got %q", public.Email)
	}
	byOwner, err := f.service.GetBrandByOwner(ctx, owner, owner.AccountID)
	if err != nil || byOwner.Email != "hi@acme.test" {
		t.Fatalf("expected owner to see email, got %q %v", byOwner.Email, err)
	}
	all, err := f.service.ListBrands(ctx, domain.Actor{})
	if err != nil || len(all) != 1 {
		t.Fatalf("expected one public brand, got %d %v", len(all), err)
	}
}

func TestBrandHistoryCapped(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)
	brand, err := f.service.CreateBrand(ctx, owner, []byte(`{"name":"Acme"}`), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		if brand, err = f.service.UpdateBrand(ctx, owner, brand.ID, []byte(`{}`), nil); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}
	if len(brand.ChangeHistory) != domain.MaxBrandHistory {
		t.Fatalf("expected %d history entries, got %d", domain.MaxBrandHistory, len(brand.ChangeHistory))
	}
}

func TestProductLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)

	body := `{"name":"Oat Crunch","description":"Granola","category":"Snacks","msrp":"10","retailMargin":"40","casePackSize":"12","stock":"5","owner":"` + uuid.NewString() + `"}`
	uploads := []ports.FileUpload{
		{Field: "productImage", OriginalName: "front.jpg", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("img")},
		{Field: "sellSheetFile", OriginalName: "sheet.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
	}
	product, err := f.service.CreateProduct(ctx, owner, []byte(body), uploads)
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.OwnerID != owner.AccountID {
		t.Fatalf("expected owner to be the caller")
	}
	if product.WholesalePrice != 6 || product.CasePrice != 72 || product.DiscountedPrice != 10 {
		t.Fatalf("unexpected derived pricing %+v", product)
	}
	if !strings.HasPrefix(product.ImageURL, "/uploads/productImage/") || product.ImageDetails == nil || product.ImageDetails.OriginalName != "front.jpg" {
		t.Fatalf("unexpected image %q %+v", product.ImageURL, product.ImageDetails)
	}
	if !strings.HasPrefix(product.Marketing.SellSheetFile, "/uploads/sellSheetFile/") {
		t.Fatalf("unexpected sell sheet %q", product.Marketing.SellSheetFile)
	}

	updated, err := f.service.UpdateProduct(ctx, owner, product.ID, []byte(`{"discount":"20","salesCount":999}`), nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.DiscountedPrice != 8 || updated.SalesCount != 0 {
		t.Fatalf("unexpected update result discounted=%v sales=%v", updated.DiscountedPrice, updated.SalesCount)
	}

	sold, err := f.service.RecordSale(ctx, owner, product.ID, 3, 9.5)
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if sold.SalesCount != 3 || sold.Revenue != 28.5 {
		t.Fatalf("unexpected totals %v %v", sold.SalesCount, sold.Revenue)
	}
	if _, err := f.service.RecordSale(ctx, owner, product.ID, 0, 1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	listed, err := f.service.ListProducts(ctx, ProductListRequest{Category: "Snacks"})
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one listed product, got %d %v", len(listed), err)
	}

	if err := f.service.DeleteProduct(ctx, owner, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if f.files.has(product.ImageURL) || f.files.has(product.Marketing.SellSheetFile) {
		t.Fatalf("expected product files removed")
	}
	if _, err := f.service.GetProduct(ctx, product.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted product to be gone, got %v", err)
	}
}

func TestProductValidationStoresNoFiles(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)

	uploads := []ports.FileUpload{{Field: "productImage", OriginalName: "a.png", Body: strings.NewReader("a")}}
	_, err := f.service.CreateProduct(ctx, owner, []byte(`{"name":"No price","description":"d","category":"c"}`), uploads)
	if !errors.Is(err, domain.ErrValidation) || !strings.Contains(err.Error(), "MSRP is required") {
		t.Fatalf("expected msrp validation error, got %v", err)
	}
	if len(f.files.items) != 0 {
		t.Fatalf("expected no stored files after validation failure")
	}

	_, err = f.service.CreateProduct(ctx, owner, []byte(`{"name":"x","description":"d","category":"c","msrp":1}`),
		[]ports.FileUpload{{Field: "resume", Body: strings.NewReader("a")}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown upload field to be rejected, got %v", err)
	}
}

func TestProductAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	owner := f.actorWithRole(domain.RoleBrandOwner)
	other := f.actorWithRole(domain.RoleBrandManager)
	admin := f.actorWithRole(domain.RoleAdmin)
	buyer := f.actorWithRole(domain.RoleBuyer)

	product, err := f.service.CreateProduct(ctx, owner, []byte(`{"name":"x","description":"d","category":"c","msrp":1}`), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.CreateProduct(ctx, buyer, []byte(`{}`), nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected buyer forbidden, got %v", err)
	}
	if _, err := f.service.UpdateProduct(ctx, other, product.ID, []byte(`{}`), nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected other manager forbidden, got %v", err)
	}
	if _, err := f.service.RecordSale(ctx, domain.Actor{}, product.ID, 1, 1); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected anonymous unauthorized, got %v", err)
	}
	if _, err := f.service.UpdateProduct(ctx, admin, product.ID, []byte(`{"name":"renamed"}`), nil); err != nil {
		t.Fatalf("expected admin update to succeed, got %v", err)
	}
}
