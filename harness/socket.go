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

import "github.com/theory-cloud/AppTheory/socket"

// NewFakeSocketFactory returns a socket.ClientFactory that records every
// outbound send instead of calling a cloud API, plus the recorder fixtures
// assert against — reusing socket.FakeClient/FakeRecorder rather than
// re-implementing the same recording contract here.
func NewFakeSocketFactory() (socket.ClientFactory, *socket.FakeRecorder) {
	recorder := socket.NewFakeRecorder()
	return socket.FakeClientFactory(recorder), recorder
}
