// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"blogcore/internal/respond"
)

// RateLimit returns a per-client sliding-window limiter allowing limit
// requests per window. Rejected requests get a 429 JSON envelope.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return clientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respond.Fail(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
	)
}

// clientIP returns the host part of RemoteAddr. Forwarding headers are
// client-controlled and never read here; behind a trusted proxy, mount
// chi's RealIP first so RemoteAddr already carries the original client.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
