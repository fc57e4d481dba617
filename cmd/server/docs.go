// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// @title Eventide API
// @version 1.0
// @description Personalized event recommendations, similar events, and smart search over an embedded event catalog.
// @description
// @description ## Authentication
// @description
// @description User endpoints require a bearer JWT issued by your identity provider (HS256, `sub` = user ID).
// @description Job endpoints accept `Authorization: Bearer <CRON_SECRET>`.
// @description Similar events and smart search are public; a token, when sent, must be valid.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-01-18T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/eventide/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer JWT or, for job endpoints, the cron secret.
//
// @tag.name Core
// @tag.description Health checks
//
// @tag.name Recommendations
// @tag.description Personalized and similar-event recommendations
//
// @tag.name Search
// @tag.description Smart search from free-text interests
//
// @tag.name Preferences
// @tag.description Explicit preferences, interaction statistics, and implicit keywords
//
// @tag.name Interactions
// @tag.description Interaction recording
//
// @tag.name Embeddings
// @tag.description Event embedding maintenance
//
// @tag.name Jobs
// @tag.description Scheduled job triggers for external cron
//
// @tag.name Admin
// @tag.description Operational statistics

package main
