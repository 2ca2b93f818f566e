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

// Package config loads the YAML-sourced CORS and rate-limit configuration,
// using gopkg.in/yaml.v3 applied here to deployment-time policy documents
// instead of response bodies.
package config

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theory-cloud/AppTheory/kvstore"
	"github.com/theory-cloud/AppTheory/pipeline"
	"github.com/theory-cloud/AppTheory/ratelimit"
)

// File is the on-disk shape of an apptheoryd configuration document.
type File struct {
	CORS      CORSSection      `yaml:"cors"`
	RateLimit RateLimitSection `yaml:"rate_limit"`
}

// CORSSection mirrors pipeline.CORSConfig's fields for YAML decoding.
type CORSSection struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	Credentials    bool     `yaml:"credentials"`
}

// RateLimitSection describes one or more windows; a single window loads as
// a ratelimit.FixedWindow, two or more as a ratelimit.MultiWindow.
type RateLimitSection struct {
	Windows []WindowSection `yaml:"windows"`
}

// WindowSection is one window's duration/limit pair, as a YAML-parseable
// duration string (e.g. "1s", "1m").
type WindowSection struct {
	Duration string `yaml:"duration"`
	Limit    int64  `yaml:"limit"`
}

// Load decodes a configuration document from r.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &f, nil
}

// CORSConfig builds the pipeline.CORSConfig this document describes. A nil
// AllowedOrigins in the decoded YAML preserves the allow-all default.
func (f *File) CORSConfig() pipeline.CORSConfig {
	return pipeline.CORSConfig{
		AllowedOrigins: f.CORS.AllowedOrigins,
		AllowedHeaders: f.CORS.AllowedHeaders,
		Credentials:    f.CORS.Credentials,
	}
}

// WindowSpecs parses every configured window's duration string into
// ratelimit.WindowSpec values, in document order.
func (f *File) WindowSpecs() ([]ratelimit.WindowSpec, error) {
	specs := make([]ratelimit.WindowSpec, 0, len(f.RateLimit.Windows))
	for _, w := range f.RateLimit.Windows {
		d, err := time.ParseDuration(w.Duration)
		if err != nil {
			return nil, fmt.Errorf("config: rate_limit window %q: %w", w.Duration, err)
		}
		specs = append(specs, ratelimit.WindowSpec{Duration: d, Limit: w.Limit})
	}
	return specs, nil
}

// NewLimiter builds a ratelimit.Limiter from the configured windows against
// store: a single window loads as a FixedWindow, two or more as a
// MultiWindow requiring headroom in every window.
func (f *File) NewLimiter(store kvstore.Store, failOpen bool) (ratelimit.Limiter, error) {
	specs, err := f.WindowSpecs()
	if err != nil {
		return nil, err
	}
	switch len(specs) {
	case 0:
		return nil, nil
	case 1:
		return &ratelimit.FixedWindow{Store: store, Duration: specs[0].Duration, Limit: specs[0].Limit, FailOpen: failOpen}, nil
	default:
		return &ratelimit.MultiWindow{Store: store, Windows: specs, FailOpen: failOpen}, nil
	}
}
