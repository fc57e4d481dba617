// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// reflection data and is safe for concurrent use. Field names in errors are
// taken from the json tag so messages match the request body the client
// sent ("event_id is required", not "EventID is required").
//
// # Custom Tags
//
//   - nonblank: string is not empty after trimming whitespace
//
// # API Error Integration
//
// RequestValidationError.ToAPIError produces the VALIDATION_ERROR shape used
// by every handler:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "limit must be at most 10",
//	    "details": {"field": "limit", "tag": "max", "value": 25}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "event_id: event_id is required; type: type must be one of: viewed saved rsvp attended",
//	    "details": {"fields": [{"field": "event_id", ...}, {"field": "type", ...}]}
//	}
//
// # Usage
//
//	var req models.InteractionRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondValidationError(w, verr)
//	    return
//	}
package validation
