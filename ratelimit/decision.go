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

package ratelimit

import "time"

// Decision is the outcome of check_limit or check_and_increment (spec
// §4.J). RetryAfterMS is populated only when Allowed is false.
type Decision struct {
	Allowed      bool
	ResetsAt     time.Time
	RetryAfterMS int64
}

func denyWithRetry(resetsAt, now time.Time) Decision {
	retry := resetsAt.Sub(now).Milliseconds()
	if retry < 0 {
		retry = 0
	}
	return Decision{Allowed: false, ResetsAt: resetsAt, RetryAfterMS: retry}
}

func allowUntil(resetsAt time.Time) Decision {
	return Decision{Allowed: true, ResetsAt: resetsAt}
}
