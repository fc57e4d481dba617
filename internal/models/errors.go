// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

import "errors"

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")
