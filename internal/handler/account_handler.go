package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/auth"
	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/serializer"
	"github.com/prn-tf/marketplace/internal/service"
)

// AccountHandler serves the account endpoints.
type AccountHandler struct {
	*responder
	accounts *service.AccountService
	pageSize int
}

// RegisterRoutes registers account routes.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/accounts", h.handleList)
	r.Post("/accounts", h.handleRegister)
	r.Get("/accounts/newest/{n}", h.handleNewest)
	r.Get("/accounts/{id}", h.handleGet)
	r.Patch("/accounts/{id}", h.handleUpdate)
	r.Get("/accounts/{id}/management", h.handleGetManaged)
	r.Patch("/accounts/{id}/management", h.handleManage)
}

func (h *AccountHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(r, h.pageSize)
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailInvalidPage)
		return
	}

	result, err := h.accounts.List(r.Context(), auth.ActorFromContext(r.Context()), page.options())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if !page.valid(result.Total) {
		writeDetail(w, http.StatusNotFound, DetailInvalidPage)
		return
	}

	writeJSON(w, http.StatusOK, newPage(r, page, result.Total, serializer.NewAccountViews(result.Items)))
}

func (h *AccountHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.Register(r.Context(), auth.ActorFromContext(r.Context()), body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serializer.Account(serializer.AccountCreate, account))
}

func (h *AccountHandler) handleNewest(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "n")
	if !isDigits(raw) {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
		return
	}

	accounts, err := h.accounts.Newest(r.Context(), auth.ActorFromContext(r.Context()), n)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewAccountViews(accounts))
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, serializer.AccountRetrieve)
}

func (h *AccountHandler) handleGetManaged(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, serializer.AccountManage)
}

func (h *AccountHandler) get(w http.ResponseWriter, r *http.Request, op serializer.Operation) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
		return
	}

	account, err := h.accounts.Get(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.Account(op, account))
}

func (h *AccountHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, serializer.AccountUpdate, h.accounts.Update)
}

func (h *AccountHandler) handleManage(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, serializer.AccountManage, h.accounts.Manage)
}

type accountWrite = func(ctx context.Context, actor *domain.Account, id uuid.UUID, body []byte) (*domain.Account, error)

func (h *AccountHandler) write(w http.ResponseWriter, r *http.Request, op serializer.Operation, fn accountWrite) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	account, err := fn(r.Context(), auth.ActorFromContext(r.Context()), id, body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.Account(op, account))
}

// pathID parses the {id} URL parameter. Malformed ids match nothing.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
