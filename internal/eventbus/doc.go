// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package eventbus carries domain events between the API and background
// consumers over an in-process Watermill GoChannel.
//
// The API publishes an InteractionRecorded message on TopicInteractionRecorded
// after every accepted interaction. The RefreshHandler consumes it and, for
// strong signals (rsvp and attended by default), re-derives the user's
// preference profile and refreshes their stored recommendations so the next
// read reflects the new signal without waiting for the daily job.
//
// Handlers run behind Watermill's Recoverer and Retry middleware. Errors
// that retrying cannot fix (no profile, partial batches) are logged and
// acknowledged.
package eventbus
