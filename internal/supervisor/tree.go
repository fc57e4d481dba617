// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer identifies a child supervisor of the tree.
type Layer string

// Layers, in start order.
const (
	LayerJobs      Layer = "jobs-layer"
	LayerMessaging Layer = "messaging-layer"
	LayerAPI       Layer = "api-layer"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the backoff for the messaging and API layers.
	// Default: 15s
	FailureBackoff time.Duration

	// JobFailureBackoff is the backoff for the jobs layer. Jobs usually
	// fail because the embedding provider or database is down, so they
	// wait longer before retrying.
	// Default: 1m
	JobFailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns the production defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold:  5.0,
		FailureDecay:      30.0,
		FailureBackoff:    15 * time.Second,
		JobFailureBackoff: time.Minute,
		ShutdownTimeout:   10 * time.Second,
	}
}

func (c *TreeConfig) applyDefaults() {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.JobFailureBackoff == 0 {
		c.JobFailureBackoff = d.JobFailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}

func (c *TreeConfig) spec(backoff time.Duration) suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   backoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the process supervision hierarchy:
//   - jobs: scheduled refresh, sweep, and embedding backfill
//   - messaging: the in-process event bus
//   - api: HTTP server
//
// A job crashing in a loop backs off inside its own layer and never
// restarts the HTTP server.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	logger *slog.Logger
	config TreeConfig

	mu       sync.Mutex
	services map[Layer][]string
}

// NewSupervisorTree creates the tree. Zero config fields take defaults.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, fmt.Errorf("supervisor tree requires a logger")
	}
	config.applyDefaults()

	// MustHook has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}
	rootSpec := config.spec(config.FailureBackoff)
	rootSpec.EventHook = handler.MustHook()

	root := suture.New("eventide", rootSpec)
	// Children inherit the EventHook when added to the root.
	layers := map[Layer]*suture.Supervisor{
		LayerJobs:      suture.New(string(LayerJobs), config.spec(config.JobFailureBackoff)),
		LayerMessaging: suture.New(string(LayerMessaging), config.spec(config.FailureBackoff)),
		LayerAPI:       suture.New(string(LayerAPI), config.spec(config.FailureBackoff)),
	}
	for _, l := range []Layer{LayerJobs, LayerMessaging, LayerAPI} {
		root.Add(layers[l])
	}

	return &SupervisorTree{
		root:     root,
		layers:   layers,
		logger:   logger,
		config:   config,
		services: make(map[Layer][]string),
	}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add registers svc with the given layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %q", layer)
	}
	t.mu.Lock()
	t.services[layer] = append(t.services[layer], fmt.Sprint(svc))
	t.mu.Unlock()
	return sup.Add(svc), nil
}

// AddJobService adds a scheduled job to the jobs layer.
func (t *SupervisorTree) AddJobService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerJobs, svc)
	return token
}

// AddMessagingService adds a service to the messaging layer.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerMessaging, svc)
	return token
}

// AddAPIService adds a service to the API layer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerAPI, svc)
	return token
}

// Services returns the registered service names per layer.
func (t *SupervisorTree) Services() map[Layer][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Layer][]string, len(t.services))
	for l, names := range t.services {
		out[l] = append([]string(nil), names...)
	}
	return out
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The channel receives the
// result once, when the tree stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that did not stop within the
// shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
