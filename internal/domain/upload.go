package domain

import "path"

// UploadField names a multipart file field accepted on catalog writes.
type UploadField string

const (
	UploadProductImage     UploadField = "productImage"
	UploadIngredientsLabel UploadField = "ingredientsLabel"
	UploadNutritionalLabel UploadField = "nutritionalLabel"
	UploadElevatorPitch    UploadField = "elevatorPitchFile"
	UploadSellSheet        UploadField = "sellSheetFile"
	UploadPresentation     UploadField = "presentationFile"
	UploadBrandLogo        UploadField = "logo"
)

// ProductUploadFields lists the file fields a product write may carry.
var ProductUploadFields = []UploadField{
	UploadProductImage,
	UploadIngredientsLabel,
	UploadNutritionalLabel,
	UploadElevatorPitch,
	UploadSellSheet,
	UploadPresentation,
}

// StoredUpload describes a file already written to the file store.
type StoredUpload struct {
	Field        UploadField
	Path         string
	OriginalName string
	MimeType     string
	Size         int64
}

// UploadPath is the public relative path of a stored file.
func UploadPath(field UploadField, filename string) string {
	return path.Join("/uploads", string(field), path.Base(filename))
}

// AttachUpload splices a stored file into the product section that owns it.
// The product image also records the original file metadata.
func (p *Product) AttachUpload(u StoredUpload) bool {
	switch u.Field {
	case UploadProductImage:
		p.ImageURL = u.Path
		p.ImageDetails = &ImageDetails{
			OriginalName: u.OriginalName,
			MimeType:     u.MimeType,
			Size:         Number(u.Size),
		}
	case UploadIngredientsLabel:
		p.Packaging.Ingredients.IngredientsLabelImage = u.Path
	case UploadNutritionalLabel:
		p.Packaging.NutritionalInfo.NutritionalLabelImage = u.Path
	case UploadElevatorPitch:
		p.Marketing.ElevatorPitchFile = u.Path
	case UploadSellSheet:
		p.Marketing.SellSheetFile = u.Path
	case UploadPresentation:
		p.Marketing.PresentationFile = u.Path
	default:
		return false
	}
	return true
}
