// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
	"github.com/tomtom215/eventide/internal/vector"
)

type fakeDeriver struct {
	err   error
	calls int
}

func (f *fakeDeriver) Derive(_ context.Context, _ string) (vector.Vector, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return vector.Vector{1, 0}, nil
}

type fakeRefresher struct {
	res   recommend.BatchResult
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (recommend.BatchResult, error) {
	f.calls++
	return f.res, f.err
}

func event(t models.InteractionType) *InteractionRecorded {
	return &InteractionRecorded{UserID: "u1", EventID: "e1", Type: t}
}

func TestRefreshHandler_Handles(t *testing.T) {
	t.Parallel()

	h := NewRefreshHandler(&fakeDeriver{}, &fakeRefresher{}, []string{"rsvp", "attended", "bogus"}, zerolog.Nop())
	tests := map[models.InteractionType]bool{
		models.InteractionRSVP:     true,
		models.InteractionAttended: true,
		models.InteractionViewed:   false,
		models.InteractionSaved:    false,
		"bogus":                    false,
	}
	for typ, want := range tests {
		if got := h.Handles(typ); got != want {
			t.Errorf("Handles(%s) = %v, want %v", typ, got, want)
		}
	}
}

func TestRefreshHandler_Handle(t *testing.T) {
	t.Parallel()

	upstreamErr := fmt.Errorf("load: %w", recommend.ErrUpstreamFetch)

	tests := []struct {
		name            string
		typ             models.InteractionType
		deriveErr       error
		refreshErr      error
		wantErr         bool
		wantUnrecovered bool
		wantDerive      int
		wantRefresh     int
	}{
		{name: "weak signal ignored", typ: models.InteractionViewed},
		{name: "strong signal refreshes", typ: models.InteractionRSVP, wantDerive: 1, wantRefresh: 1},
		{name: "no profile still refreshes", typ: models.InteractionAttended, deriveErr: recommend.ErrNoProfileAvailable, wantDerive: 1, wantRefresh: 1},
		{name: "derive upstream retries", typ: models.InteractionRSVP, deriveErr: upstreamErr, wantErr: true, wantDerive: 1},
		{name: "derive contract violation gives up", typ: models.InteractionRSVP, deriveErr: vector.ErrDimensionMismatch, wantErr: true, wantUnrecovered: true, wantDerive: 1},
		{name: "partial batch acknowledged", typ: models.InteractionRSVP, refreshErr: &recommend.PartialBatchError{Requested: 5, Succeeded: 3}, wantDerive: 1, wantRefresh: 1},
		{name: "refresh upstream retries", typ: models.InteractionRSVP, refreshErr: upstreamErr, wantErr: true, wantDerive: 1, wantRefresh: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deriver := &fakeDeriver{err: tt.deriveErr}
			refresher := &fakeRefresher{err: tt.refreshErr, res: recommend.BatchResult{Requested: 5, Succeeded: 5}}
			h := NewRefreshHandler(deriver, refresher, []string{"rsvp", "attended"}, zerolog.Nop())

			err := h.Handle(context.Background(), event(tt.typ))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, ErrUnrecoverable); got != tt.wantUnrecovered {
				t.Errorf("unrecoverable = %v, want %v", got, tt.wantUnrecovered)
			}
			if deriver.calls != tt.wantDerive {
				t.Errorf("derive calls = %d, want %d", deriver.calls, tt.wantDerive)
			}
			if refresher.calls != tt.wantRefresh {
				t.Errorf("refresh calls = %d, want %d", refresher.calls, tt.wantRefresh)
			}
		})
	}
}
