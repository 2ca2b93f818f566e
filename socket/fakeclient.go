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
	"context"
	"sync"
)

// SentMessage is one recorded PostToConnection call.
type SentMessage struct {
	Endpoint     string
	ConnectionID string
	Data         []byte
}

// FakeClient is the test ManagementClient: it records every send instead of
// talking to a real API.
type FakeClient struct {
	Endpoint string

	mu   sync.Mutex
	sent []SentMessage
}

// PostToConnection records the call and always succeeds.
func (f *FakeClient) PostToConnection(_ context.Context, connectionID string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, SentMessage{Endpoint: f.Endpoint, ConnectionID: connectionID, Data: append([]byte(nil), data...)})
	return nil
}

// Sent returns a snapshot of every recorded call.
func (f *FakeClient) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// FakeClientFactory returns a ClientFactory whose clients all record into
// the same shared recorder (keyed by endpoint), so a test can assert on
// every send across however many connections/endpoints it exercised.
func FakeClientFactory(recorder *FakeRecorder) ClientFactory {
	return func(endpoint string) (ManagementClient, error) {
		return recorder.clientFor(endpoint), nil
	}
}

// FakeRecorder owns one FakeClient per management endpoint.
type FakeRecorder struct {
	mu      sync.Mutex
	clients map[string]*FakeClient
}

// NewFakeRecorder constructs an empty FakeRecorder.
func NewFakeRecorder() *FakeRecorder {
	return &FakeRecorder{clients: map[string]*FakeClient{}}
}

func (r *FakeRecorder) clientFor(endpoint string) *FakeClient {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[endpoint]
	if !ok {
		c = &FakeClient{Endpoint: endpoint}
		r.clients[endpoint] = c
	}
	return c
}

// All returns every message sent across every endpoint, in the order
// FakeClient.Sent would report per-client (concatenated, endpoint order
// unspecified); tests that need one endpoint should call clientFor-scoped
// accessors via All().
func (r *FakeRecorder) All() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SentMessage
	for _, c := range r.clients {
		out = append(out, c.Sent()...)
	}
	return out
}
