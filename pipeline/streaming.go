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

package pipeline

import (
	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/hooks"
)

// StreamResult reports how a streaming response's single consumption pass
// ended.
type StreamResult struct {
	// ChunksSent is how many chunks were written before any error.
	ChunksSent int
	// ErrorCode is the taxonomy code of an exception raised mid-stream
	// (app.internal if the source didn't raise a taxonomy error), or ""
	// if the sequence was consumed to completion without error.
	ErrorCode string
}

// ConsumeStream drains resp.Stream exactly once, invoking emit for each
// chunk in order. Headers must already be finalized by the caller before
// this runs — "headers mutated by the handler after the first chunk are
// not propagated" is enforced by callers capturing resp.Headers
// before invoking ConsumeStream, not by this function. Chunks already sent
// before a mid-stream error are preserved; the remaining sequence is not
// consumed.
func ConsumeStream(resp *canonical.Response, emit func(chunk []byte) error) StreamResult {
	if resp.Stream == nil {
		return StreamResult{}
	}
	sent := 0
	for {
		chunk, ok, err := resp.Stream.Next()
		if err != nil {
			return StreamResult{ChunksSent: sent, ErrorCode: string(apperr.ToTaxonomy(err).Code)}
		}
		if !ok {
			return StreamResult{ChunksSent: sent}
		}
		if emitErr := emit(chunk); emitErr != nil {
			return StreamResult{ChunksSent: sent, ErrorCode: string(apperr.ToTaxonomy(emitErr).Code)}
		}
		sent++
	}
}

// ReportStreamResult emits a follow-up observability log when a stream
// ended in error, since the pipeline's single request.completed record is
// already emitted before the adapter drains the stream.
func (p *Pipeline) ReportStreamResult(req *canonical.Request, result StreamResult) {
	if result.ErrorCode == "" || p.Observability == nil {
		return
	}
	p.Observability.Log(hooks.LogRecord{
		Level:     "error",
		Event:     "request.stream_error",
		RequestID: req.RequestID,
		TenantID:  req.TenantID,
		Method:    req.Method,
		Path:      req.Path,
		ErrorCode: result.ErrorCode,
	})
}
