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

package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/AppTheory/canonical"

	apptheory "github.com/theory-cloud/AppTheory"
)

func TestRouterDispatchSendsJSON(t *testing.T) {
	recorder := NewFakeRecorder()
	router := NewRouter(FakeClientFactory(recorder))
	router.Handle("$default", func(ctx *apptheory.Context) (any, error) {
		cap := ctx.Socket.(*Capability)
		err := cap.SendJSON(ctx.StdContext(), map[string]any{"b": 2, "a": 1})
		return nil, err
	})

	ev := canonical.SocketEvent{
		RequestContext: canonical.SocketRequestContext{
			RouteKey:     "$default",
			ConnectionID: "conn-1",
			DomainName:   "abc.execute-api.us-east-1.amazonaws.com",
			Stage:        "prod",
		},
		Body: "hello",
	}

	_, err := router.Dispatch(ev)
	require.NoError(t, err)

	sent := recorder.All()
	require.Len(t, sent, 1)
	assert.Equal(t, "conn-1", sent[0].ConnectionID)
	assert.Equal(t, "https://abc.execute-api.us-east-1.amazonaws.com/prod", sent[0].Endpoint)
	assert.JSONEq(t, `{"a":1,"b":2}`, string(sent[0].Data))
}

func TestRouterDispatchUnmatchedRouteKey(t *testing.T) {
	router := NewRouter(FakeClientFactory(NewFakeRecorder()))

	ev := canonical.SocketEvent{
		RequestContext: canonical.SocketRequestContext{RouteKey: "$connect", ConnectionID: "conn-1"},
	}

	_, err := router.Dispatch(ev)
	require.Error(t, err)
}
