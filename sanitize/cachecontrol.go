// Copyright 2026 The AppTheory Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sanitize

import (
	"fmt"
	"strings"
	"time"
)

// CacheControlOption configures CacheControl's directive set via functional
// options.
type CacheControlOption func(*cacheControlConfig)

type cacheControlConfig struct {
	public               bool
	private              bool
	noStore              bool
	noCache              bool
	maxAge               time.Duration
	staleWhileRevalidate time.Duration
	staleIfError         time.Duration
}

// WithPublic marks the response cacheable by shared caches.
func WithPublic() CacheControlOption { return func(c *cacheControlConfig) { c.public = true } }

// WithPrivate marks the response cacheable only by a single user's cache.
func WithPrivate() CacheControlOption { return func(c *cacheControlConfig) { c.private = true } }

// WithNoStore forbids any cache from storing the response.
func WithNoStore() CacheControlOption { return func(c *cacheControlConfig) { c.noStore = true } }

// WithNoCache requires revalidation before a cached response is reused.
func WithNoCache() CacheControlOption { return func(c *cacheControlConfig) { c.noCache = true } }

// WithMaxAge sets the max-age directive, in seconds.
func WithMaxAge(d time.Duration) CacheControlOption {
	return func(c *cacheControlConfig) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithStaleWhileRevalidate sets the RFC 5861 stale-while-revalidate directive.
func WithStaleWhileRevalidate(d time.Duration) CacheControlOption {
	return func(c *cacheControlConfig) {
		if d > 0 {
			c.staleWhileRevalidate = d
		}
	}
}

// WithStaleIfError sets the stale-if-error directive.
func WithStaleIfError(d time.Duration) CacheControlOption {
	return func(c *cacheControlConfig) {
		if d > 0 {
			c.staleIfError = d
		}
	}
}

// CacheControl renders a Cache-Control header value from the given options,
// or "" if none applied. Callers set it on canonical.Response.Headers
// directly — this package has no dependency on canonical, to stay pure.
func CacheControl(opts ...CacheControlOption) string {
	cfg := &cacheControlConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	parts := make([]string, 0, 7)
	if cfg.public {
		parts = append(parts, "public")
	}
	if cfg.private {
		parts = append(parts, "private")
	}
	if cfg.noStore {
		parts = append(parts, "no-store")
	}
	if cfg.noCache {
		parts = append(parts, "no-cache")
	}
	if cfg.maxAge > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", int(cfg.maxAge.Seconds())))
	}
	if cfg.staleWhileRevalidate > 0 {
		parts = append(parts, fmt.Sprintf("stale-while-revalidate=%d", int(cfg.staleWhileRevalidate.Seconds())))
	}
	if cfg.staleIfError > 0 {
		parts = append(parts, fmt.Sprintf("stale-if-error=%d", int(cfg.staleIfError.Seconds())))
	}
	return strings.Join(parts, ", ")
}
