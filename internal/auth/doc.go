// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package auth authenticates API callers.

Two credentials are accepted on the Authorization header:

  - Bearer JWT (HS256) issued by the front end. The "sub" claim is the user ID
    and the "role" claim ("user" or "admin") feeds authorization.
  - Bearer cron secret. Scheduled job triggers authenticate with the shared
    CRON_SECRET and receive the "service" role.

With AUTH_MODE=none (development only) every request is treated as the user
named in the X-User-ID header, or "dev-user", with the admin role.

Authenticated claims are stored in the request context; read them with
ClaimsFromContext or UserID. Role enforcement lives in internal/authz.
*/
package auth
