package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prn-tf/marketplace/internal/auth"
	"github.com/prn-tf/marketplace/internal/serializer"
	"github.com/prn-tf/marketplace/internal/service"
)

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	*responder
	products *service.ProductService
	pageSize int
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Post("/products", h.handleCreate)
	r.Get("/products/{id}", h.handleGet)
	r.Patch("/products/{id}", h.handleUpdate)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(r, h.pageSize)
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailInvalidPage)
		return
	}

	result, err := h.products.List(r.Context(), auth.ActorFromContext(r.Context()), page.options())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if !page.valid(result.Total) {
		writeDetail(w, http.StatusNotFound, DetailInvalidPage)
		return
	}

	writeJSON(w, http.StatusOK, newPage(r, page, result.Total, serializer.NewProductListViews(result.Items)))
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	out, err := h.products.Create(r.Context(), auth.ActorFromContext(r.Context()), body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serializer.NewProductDetailView(out.Product, out.Seller))
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
		return
	}

	out, err := h.products.Get(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewProductDetailView(out.Product, out.Seller))
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	out, err := h.products.Update(r.Context(), auth.ActorFromContext(r.Context()), id, body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewProductDetailView(out.Product, out.Seller))
}
