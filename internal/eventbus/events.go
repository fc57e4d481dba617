// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package eventbus

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventide/internal/models"
)

// TopicInteractionRecorded carries InteractionRecorded messages.
const TopicInteractionRecorded = "interaction.recorded"

// InteractionRecorded is published after an interaction is stored.
type InteractionRecorded struct {
	UserID     string                 `json:"user_id"`
	EventID    string                 `json:"event_id"`
	Type       models.InteractionType `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	RequestID  string                 `json:"request_id,omitempty"`
}

// Validate checks the fields a consumer relies on.
func (e *InteractionRecorded) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("interaction event: user_id is required")
	}
	if e.EventID == "" {
		return fmt.Errorf("interaction event: event_id is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("interaction event: invalid type %q", e.Type)
	}
	return nil
}

func marshalInteraction(e *InteractionRecorded) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction event: %w", err)
	}
	return data, nil
}

func unmarshalInteraction(data []byte) (*InteractionRecorded, error) {
	var e InteractionRecorded
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal interaction event: %w", err)
	}
	return &e, nil
}
