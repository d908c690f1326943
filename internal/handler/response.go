package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/prn-tf/marketplace/internal/auth"
	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/metrics"
	"github.com/prn-tf/marketplace/internal/permission"
	"github.com/prn-tf/marketplace/internal/serializer"
	"github.com/prn-tf/marketplace/internal/service"
)

// Response details. They are part of the public API.
const (
	DetailNotAuthenticated = "Authentication credentials were not provided."
	DetailForbidden        = "You do not have permission to perform this action."
	DetailNotFound         = "Not found."
	DetailInvalidPage      = "Invalid page."
	DetailServerError      = "A server error occurred."
	DetailBodyTooLarge     = "Request body too large."
	DetailMethodNotAllowed = "Method \"%s\" not allowed."
)

// errorBody is the shape of non-validation error responses.
type errorBody struct {
	Detail string `json:"detail"`
}

// responder renders results and maps errors to HTTP responses.
type responder struct {
	metrics     *metrics.Metrics
	maxBodySize int64
	logger      zerolog.Logger
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// readBody reads the request body up to the configured limit.
func (rs *responder) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := r.Body
	if rs.maxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, rs.maxBodySize)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, DetailBodyTooLarge)
			return nil, false
		}
		rs.handleError(w, r, err)
		return nil, false
	}
	return data, true
}

// handleError maps service, permission and validation errors to responses.
func (rs *responder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr *serializer.ParseError
		fieldErr *domain.ValidationError
	)

	switch {
	case errors.As(err, &parseErr):
		writeDetail(w, http.StatusBadRequest, parseErr.Error())

	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusBadRequest, fieldErr.Fields)

	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			domain.NonFieldErrorsKey: {domain.MsgBadCredentials},
		})

	case errors.Is(err, permission.ErrNotAuthenticated):
		rs.recordDenial(r, err)
		w.Header().Set(auth.WWWAuthenticateHeader, auth.TokenKeyword)
		writeDetail(w, http.StatusUnauthorized, DetailNotAuthenticated)

	case errors.Is(err, permission.ErrForbidden):
		rs.recordDenial(r, err)
		writeDetail(w, http.StatusForbidden, DetailForbidden)

	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		writeDetail(w, http.StatusNotFound, DetailNotFound)

	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, DetailServerError)
	}
}

func (rs *responder) recordDenial(r *http.Request, err error) {
	var denied *permission.DeniedError
	if !errors.As(err, &denied) {
		return
	}
	rs.metrics.RecordDenial(denied.Decision.Action.String(), denied.Decision.Outcome.String())
	hlog.FromRequest(r).Debug().
		Str("action", denied.Decision.Action.String()).
		Str("outcome", denied.Decision.Outcome.String()).
		Msg("permission denied")
}
