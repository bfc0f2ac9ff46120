package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

var brandFileFields = []domain.UploadField{domain.UploadBrandLogo}

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "list_brands", err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *Handler) listBrandsByCategory(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrandsByCategory(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "category"))
	if err != nil {
		writeMappedError(r.Context(), w, "list_brands_by_category", err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *Handler) getBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_brand", err)
		return
	}
	brand, err := h.service.GetBrand(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_brand", err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) getBrandByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathUUID(r, "ownerID")
	if err != nil {
		writeValidationError(r.Context(), w, "get_brand_by_owner", err)
		return
	}
	brand, err := h.service.GetBrandByOwner(r.Context(), actorFromContext(r.Context()), ownerID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_brand_by_owner", err)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) createBrand(w http.ResponseWriter, r *http.Request) {
	payload, err := readCatalogPayload(w, r, brandFileFields)
	if err != nil {
		writeMappedError(r.Context(), w, "create_brand", err)
		return
	}
	defer payload.close()

	brand, err := h.service.CreateBrand(r.Context(), actorFromContext(r.Context()), payload.body, firstUpload(payload.uploads))
	if err != nil {
		writeMappedError(r.Context(), w, "create_brand", err)
		return
	}
	writeJSON(w, http.StatusCreated, brand)
}

func (h *Handler) updateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_brand", err)
		return
	}
	payload, err := readCatalogPayload(w, r, brandFileFields)
	if err != nil {
		writeMappedError(r.Context(), w, "update_brand", err)
		return
	}
	defer payload.close()

	brand, err := h.service.UpdateBrand(r.Context(), actorFromContext(r.Context()), id, payload.body, firstUpload(payload.uploads))
	if err != nil {
		writeMappedError(r.Context(), w, "update_brand", err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) uploadBrandLogo(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "upload_brand_logo", err)
		return
	}
	payload, err := readCatalogPayload(w, r, brandFileFields)
	if err != nil {
		writeMappedError(r.Context(), w, "upload_brand_logo", err)
		return
	}
	defer payload.close()

	logo, err := h.service.UploadBrandLogo(r.Context(), actorFromContext(r.Context()), id, firstUpload(payload.uploads))
	if err != nil {
		writeMappedError(r.Context(), w, "upload_brand_logo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logo uploaded successfully",
		"logo":    logo,
	})
}

func (h *Handler) toggleBrandStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "toggle_brand_status", err)
		return
	}
	brand, err := h.service.ToggleBrandStatus(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		writeMappedError(r.Context(), w, "toggle_brand_status", err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_brand", err)
		return
	}
	if err := h.service.DeleteBrand(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeMappedError(r.Context(), w, "delete_brand", err)
		return
	}
	writeMessage(w, http.StatusOK, "Brand deleted successfully")
}

func firstUpload(uploads []ports.FileUpload) *ports.FileUpload {
	if len(uploads) == 0 {
		return nil
	}
	return &uploads[0]
}
