package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/application"
	"github.com/viralforge/brandhub/internal/domain"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := application.ProductListRequest{
		Category: query.Get("category"),
		Status:   query.Get("status"),
		Search:   query.Get("search"),
	}
	if raw := strings.TrimSpace(query.Get("owner")); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid owner")
			return
		}
		req.OwnerID = ownerID
	}
	products, err := h.service.ListProducts(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "list_products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_product", err)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	payload, err := readCatalogPayload(w, r, domain.ProductUploadFields)
	if err != nil {
		writeMappedError(r.Context(), w, "create_product", err)
		return
	}
	defer payload.close()

	product, err := h.service.CreateProduct(r.Context(), actorFromContext(r.Context()), payload.body, payload.uploads)
	if err != nil {
		writeMappedError(r.Context(), w, "create_product", err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_product", err)
		return
	}
	payload, err := readCatalogPayload(w, r, domain.ProductUploadFields)
	if err != nil {
		writeMappedError(r.Context(), w, "update_product", err)
		return
	}
	defer payload.close()

	product, err := h.service.UpdateProduct(r.Context(), actorFromContext(r.Context()), id, payload.body, payload.uploads)
	if err != nil {
		writeMappedError(r.Context(), w, "update_product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_product", err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), actorFromContext(r.Context()), id); err != nil {
		writeMappedError(r.Context(), w, "delete_product", err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

type recordSaleRequest struct {
	Quantity  float64 `json:"quantity"`
	SalePrice float64 `json:"salePrice"`
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "record_sale", err)
		return
	}
	var req recordSaleRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "record_sale", err)
		return
	}
	product, err := h.service.RecordSale(r.Context(), actorFromContext(r.Context()), id, req.Quantity, req.SalePrice)
	if err != nil {
		writeMappedError(r.Context(), w, "record_sale", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}
