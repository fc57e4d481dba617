// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package embedding

import (
	"strings"

	"github.com/tomtom215/eventide/internal/models"
)

// EventText builds the text embedded for an event:
//
//	title\n\ndescription\n\nCategory: c\n\nTags: a, b
//
// Empty parts are omitted. The result is cut to maxLen characters so long
// descriptions never fail the provider length check.
func EventText(e *models.Event, maxLen int) string {
	parts := make([]string, 0, 4)
	if t := strings.TrimSpace(e.Title); t != "" {
		parts = append(parts, t)
	}
	if d := strings.TrimSpace(e.Description); d != "" {
		parts = append(parts, d)
	}
	if e.Category != "" {
		parts = append(parts, "Category: "+e.Category)
	}
	if len(e.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(e.Tags, ", "))
	}
	return truncateRunes(strings.Join(parts, "\n\n"), maxLen)
}

// PreferenceText builds the text embedded for explicit preferences:
//
//	Categories: a, b
//	Interests: x. y
func PreferenceText(categories, interests []string) string {
	return "Categories: " + strings.Join(categories, ", ") + "\nInterests: " + strings.Join(interests, ". ")
}

// InterestText joins smart-search interest terms into one query text.
func InterestText(interests []string) string {
	return strings.Join(interests, " ")
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i]
		}
		n++
	}
	return s
}
