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

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/AppTheory/kvstore"
	"github.com/theory-cloud/AppTheory/ratelimit"
)

const sampleYAML = `
cors:
  allowed_origins: ["https://app.example.com"]
  allowed_headers: ["authorization", "content-type"]
  credentials: true
rate_limit:
  windows:
    - duration: 1s
      limit: 10
    - duration: 1m
      limit: 200
`

func TestLoadDecodesCORSAndWindows(t *testing.T) {
	f, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	cors := f.CORSConfig()
	assert.Equal(t, []string{"https://app.example.com"}, cors.AllowedOrigins)
	assert.True(t, cors.Credentials)

	specs, err := f.WindowSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, time.Second, specs[0].Duration)
	assert.Equal(t, int64(10), specs[0].Limit)
	assert.Equal(t, time.Minute, specs[1].Duration)
	assert.Equal(t, int64(200), specs[1].Limit)
}

func TestNewLimiterSingleWindowBuildsFixedWindow(t *testing.T) {
	f, err := Load(strings.NewReader(`
rate_limit:
  windows:
    - duration: 1s
      limit: 5
`))
	require.NoError(t, err)

	limiter, err := f.NewLimiter(kvstore.NewMemStore(), false)
	require.NoError(t, err)
	_, ok := limiter.(*ratelimit.FixedWindow)
	assert.True(t, ok)
}

func TestNewLimiterMultipleWindowsBuildsMultiWindow(t *testing.T) {
	f, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	limiter, err := f.NewLimiter(kvstore.NewMemStore(), false)
	require.NoError(t, err)
	mw, ok := limiter.(*ratelimit.MultiWindow)
	require.True(t, ok)
	assert.Len(t, mw.Windows, 2)
}

func TestNewLimiterNoWindowsReturnsNil(t *testing.T) {
	f, err := Load(strings.NewReader("cors:\n  credentials: false\n"))
	require.NoError(t, err)

	limiter, err := f.NewLimiter(kvstore.NewMemStore(), false)
	require.NoError(t, err)
	assert.Nil(t, limiter)
}

func TestWindowSpecsRejectsBadDuration(t *testing.T) {
	f, err := Load(strings.NewReader(`
rate_limit:
  windows:
    - duration: "not-a-duration"
      limit: 5
`))
	require.NoError(t, err)
	_, err = f.WindowSpecs()
	assert.Error(t, err)
}
