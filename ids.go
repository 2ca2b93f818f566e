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

package apptheory

import "github.com/google/uuid"

// uuidIDSource is the production IDSource, backed by github.com/google/uuid
// for request and span identifiers.
type uuidIDSource struct{}

func (uuidIDSource) NewID() string { return uuid.NewString() }

// UUIDIDSource returns the production IDSource.
func UUIDIDSource() IDSource { return uuidIDSource{} }
