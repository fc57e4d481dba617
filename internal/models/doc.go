// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package models defines the data structures shared across Eventide.

Key Components:

  - Event, Venue: catalog records, with an optional semantic embedding
  - Interaction: a user's viewed/saved/rsvp/attended signal on an event
  - PreferenceProfile: explicit categories and interests plus the derived
    profile embedding
  - Recommendation: a persisted, expiring (user, event, score) row
  - ConversationPreferences: the structured preference object produced by the
    chat front end and consumed by smart search
  - APIResponse: the JSON envelope returned by every HTTP endpoint

Money:

Event prices are stored in the smallest currency unit (cents). Budgets in
ConversationPreferences are whole currency units (dollars). Use
Event.PriceDollars to compare the two.

Embeddings:

Embeddings are plain []float64 slices. Every embedding in a deployment has the
same dimensionality (1536 by default); arithmetic on them lives in
internal/vector.
*/
package models
