// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/eventide/internal/cache"
	"github.com/tomtom215/eventide/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Actions derived from HTTP methods.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// EnforcerConfig configures the Casbin enforcer.
type EnforcerConfig struct {
	// PolicyPath is a CSV policy file. Empty uses the embedded policy.
	PolicyPath string

	// CacheTTL is how long decisions are cached. Zero disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns the embedded policy with a 5 minute cache.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{CacheTTL: 5 * time.Minute}
}

// Enforcer wraps a Casbin SyncedEnforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *cache.Cache[bool]
}

// NewEnforcer loads the embedded model and the configured policy.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if _, statErr := os.Stat(cfg.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	if cfg.CacheTTL > 0 {
		e.cache = cache.New[bool](cfg.CacheTTL, 4096)
	}
	return e, nil
}

// loadPolicy adds the "p" and "g" lines of a policy CSV.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	key := role + "\x00" + object + "\x00" + action
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		metrics.AuthzDecisions.WithLabelValues(role, "error").Inc()
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	metrics.AuthzDecisions.WithLabelValues(role, decision).Inc()

	if e.cache != nil {
		e.cache.Set(key, allowed)
	}
	return allowed, nil
}

// Close stops the decision cache cleanup loop.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
