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

package harness

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptheory "github.com/theory-cloud/AppTheory"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/pipeline"
)

func TestFixedClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	assert.True(t, c.Now().Equal(start))

	next := c.Advance(time.Minute)
	assert.True(t, next.Equal(start.Add(time.Minute)))
	assert.True(t, c.Now().Equal(start.Add(time.Minute)))
}

func TestSequentialIDsIncrementsAndResets(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "req_test_1", ids.NewID())
	assert.Equal(t, "req_test_2", ids.NewID())
	ids.Reset()
	assert.Equal(t, "req_test_1", ids.NewID())
}

func TestFakeAuthDeniesUnknownToken(t *testing.T) {
	auth := &FakeAuth{ByToken: map[string]string{"Bearer good": "user-1"}}
	app := apptheory.New(apptheory.WithAuthHook(auth.Hook()))
	app.Handle("GET", "/secret", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.Text(200, ctx.Req.AuthIdentity), nil
	}, true)

	resp := app.Serve(&canonical.Request{Method: "GET", Path: "/secret", Headers: map[string][]string{}})
	assert.Equal(t, 401, resp.Status)

	authed := app.Serve(&canonical.Request{
		Method: "GET", Path: "/secret",
		Headers: map[string][]string{"authorization": {"Bearer good"}},
	})
	require.Equal(t, 200, authed.Status)
	assert.Equal(t, "user-1", string(authed.Body))
}

func TestFixtureRunPlainRoute(t *testing.T) {
	app := apptheory.New(apptheory.WithTier(pipeline.TierP0))
	app.GET("/ping", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.Text(200, "pong"), nil
	})

	f := Fixture{
		ID: "p0-ping", Tier: "p0",
		Input:  FixtureInput{Method: "GET", Path: "/ping"},
		Expect: FixtureExpect{Status: 200, Body: "pong"},
	}
	mismatches, err := Run(app, f)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestFixtureRunReportsMismatch(t *testing.T) {
	app := apptheory.New(apptheory.WithTier(pipeline.TierP0))
	app.GET("/ping", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.Text(200, "pong"), nil
	})

	f := Fixture{
		Input:  FixtureInput{Method: "GET", Path: "/ping"},
		Expect: FixtureExpect{Status: 201, Body: "pong"},
	}
	mismatches, err := Run(app, f)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "status", mismatches[0].Field)
}

func TestFixtureRunBodyJSONIgnoresKeyOrder(t *testing.T) {
	app := apptheory.New(apptheory.WithTier(pipeline.TierP0))
	app.GET("/widget", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.JSON(200, map[string]string{"id": "1", "name": "widget"})
	})

	f := Fixture{
		Input:  FixtureInput{Method: "GET", Path: "/widget"},
		Expect: FixtureExpect{Status: 200, BodyJSON: []byte(`{"name":"widget","id":"1"}`)},
	}
	mismatches, err := Run(app, f)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestLoadDirSortsByTierThenID(t *testing.T) {
	fsys := fstest.MapFS{
		"fixtures/p1/b.json": &fstest.MapFile{Data: []byte(`{"id":"b","tier":"p1","input":{"method":"GET","path":"/"},"expect":{"status":200}}`)},
		"fixtures/p0/a.json": &fstest.MapFile{Data: []byte(`{"id":"a","tier":"p0","input":{"method":"GET","path":"/"},"expect":{"status":200}}`)},
		"fixtures/p1/a.json": &fstest.MapFile{Data: []byte(`{"id":"a","tier":"p1","input":{"method":"GET","path":"/"},"expect":{"status":200}}`)},
	}
	fixtures, err := LoadDir(fsys, "fixtures")
	require.NoError(t, err)
	require.Len(t, fixtures, 3)
	assert.Equal(t, []string{"p0", "p1", "p1"}, []string{fixtures[0].Tier, fixtures[1].Tier, fixtures[2].Tier})
	assert.Equal(t, []string{"a", "a", "b"}, []string{fixtures[0].ID, fixtures[1].ID, fixtures[2].ID})
}

func TestNewFakeSocketFactoryRecordsSends(t *testing.T) {
	factory, recorder := NewFakeSocketFactory()
	client, err := factory("https://example.com/prod")
	require.NoError(t, err)
	require.NoError(t, client.PostToConnection(nil, "conn-1", []byte("hi")))

	all := recorder.All()
	require.Len(t, all, 1)
}
