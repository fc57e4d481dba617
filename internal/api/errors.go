// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/eventide/internal/embedding"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
	"github.com/tomtom215/eventide/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation       = validation.ErrorCode
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeNotEmbedded      = "EVENT_NOT_EMBEDDED"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodePartialFailure   = "PARTIAL_FAILURE"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeNotFoundRoute    = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// classify maps a service error to a status code and API error.
func classify(err error) (int, *models.APIError) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.ToAPIError()
	}

	switch {
	case errors.Is(err, recommend.ErrInvalidLimit),
		errors.Is(err, recommend.ErrInvalidInput),
		errors.Is(err, embedding.ErrEmptyText),
		errors.Is(err, embedding.ErrTextTooLong),
		errors.Is(err, embedding.ErrEmptyBatch),
		errors.Is(err, embedding.ErrBatchTooLarge):
		return http.StatusBadRequest, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, &models.APIError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, recommend.ErrSeedNotEmbedded):
		return http.StatusConflict, &models.APIError{Code: ErrCodeNotEmbedded, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &models.APIError{Code: ErrCodeTimeout, Message: "request timed out"}
	case errors.Is(err, recommend.ErrUpstreamFetch),
		errors.Is(err, embedding.ErrProviderFailure),
		errors.Is(err, embedding.ErrCircuitOpen):
		return http.StatusBadGateway, &models.APIError{Code: ErrCodeUpstream, Message: "an upstream dependency failed"}
	default:
		return http.StatusInternalServerError, &models.APIError{Code: ErrCodeInternal, Message: "internal error"}
	}
}

// respondServiceError logs err and writes the mapped error envelope.
// Partial batches are answered with 207 and their counts.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var partial *recommend.PartialBatchError
	if errors.As(err, &partial) {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Partial batch")
		respondPartial(w, r, map[string]int{
			"requested": partial.Requested,
			"succeeded": partial.Succeeded,
		}, partial.Requested, partial.Succeeded)
		return
	}

	status, apiErr := classify(err)
	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request failed")
	respondAPIError(w, r, status, apiErr)
}

// respondValidation writes a 400 for a malformed request.
func respondValidation(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, message)
}
