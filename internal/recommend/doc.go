// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package recommend turns event embeddings and user interaction history into
// ranked, explainable event recommendations.
//
// # Components
//
//   - ProfileBuilder: resolves one preference vector per user, either from
//     explicit onboarding input or from a weighted blend of the embeddings of
//     recently interacted events. Derived vectors are written back to the
//     profile and reused until the next derivation or explicit capture.
//   - Scorer: five-factor match quality (interest, time of day, duration,
//     price, distance) of one event against a structured preference object.
//   - Searcher: smart search over upcoming events using the Scorer.
//   - Pipeline: personalized and similar-event ranking by cosine similarity,
//     persistence of precomputed recommendations, and the expiry sweep.
//   - Backfiller: embeds published events that have no embedding yet.
//
// # Fallbacks and errors
//
// A user without a usable profile gets trending events (newest published
// upcoming events, flat score 0.5) instead of an error. ErrNoProfileAvailable
// is that signal and is never logged as a failure. Store and embedding
// provider failures wrap ErrUpstreamFetch and abort the run. A candidate
// whose embedding cannot be compared with the profile is skipped and
// counted; a profile vector of the wrong shape propagates
// vector.ErrDimensionMismatch.
//
// # Determinism
//
// Scoring is sequential and pure given its inputs. Ranking uses a stable
// sort with the event ID as tie-breaker, and every clock read goes through
// an injectable now function.
//
// # Thread Safety
//
// All types are safe for concurrent use once constructed. They hold no
// mutable state beyond their collaborators.
package recommend
