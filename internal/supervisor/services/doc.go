// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package services adapts Eventide components to suture.Service.
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
//   - JobService: interval scheduler for refresh, sweep, and backfill jobs
//   - EventBusService: runs the watermill router behind the event bus
//
// Every service implements fmt.Stringer so suture logs name it.
package services
