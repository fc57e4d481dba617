// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventBusRunner is the lifecycle of *eventbus.Bus.
type EventBusRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// EventBusService runs the event bus router under suture.
//
// A watermill router cannot be restarted once it has stopped, so an
// unexpected stop is reported with suture.ErrDoNotRestart. Interactions
// are still recorded without the bus; only background refreshes stop.
type EventBusService struct {
	bus  EventBusRunner
	name string
}

// NewEventBusService wraps bus.
func NewEventBusService(bus EventBusRunner) *EventBusService {
	return &EventBusService{bus: bus, name: "event-bus"}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	runErr := s.bus.Run(ctx)
	closeErr := s.bus.Close()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr == nil {
		runErr = closeErr
	}
	return fmt.Errorf("event bus stopped: %v: %w", runErr, suture.ErrDoNotRestart)
}

// String identifies the service in suture logs.
func (s *EventBusService) String() string {
	return s.name
}
