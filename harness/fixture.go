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
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	apptheory "github.com/theory-cloud/AppTheory"
	"github.com/theory-cloud/AppTheory/canonical"
)

// Fixture is one end-to-end scenario. Setup is left as raw JSON — what it configures is
// test-specific (routes, hooks, rate-limit state) and is applied by the
// caller before Run, not by this package.
type Fixture struct {
	ID     string          `json:"id"`
	Tier   string          `json:"tier"`
	Setup  json.RawMessage `json:"setup,omitempty"`
	Input  FixtureInput    `json:"input"`
	Expect FixtureExpect   `json:"expect"`
}

// FixtureInput describes the inbound canonical request.
type FixtureInput struct {
	Method   string              `json:"method"`
	Path     string              `json:"path"`
	Headers  map[string][]string `json:"headers,omitempty"`
	Query    map[string][]string `json:"query,omitempty"`
	Cookies  map[string]string   `json:"cookies,omitempty"`
	Body     string              `json:"body,omitempty"`
	BodyJSON json.RawMessage     `json:"body_json,omitempty"`
}

// FixtureExpect describes the expected canonical response.
type FixtureExpect struct {
	Status   int                 `json:"status"`
	Headers  map[string][]string `json:"headers,omitempty"`
	Cookies  map[string]string   `json:"cookies,omitempty"`
	IsBase64 bool                `json:"is_base64,omitempty"`
	Body     string              `json:"body,omitempty"`
	BodyJSON json.RawMessage     `json:"body_json,omitempty"`
}

// ToRequest builds the canonical.Request this fixture's input describes.
func (in FixtureInput) ToRequest() (*canonical.Request, error) {
	req := &canonical.Request{
		Method:  in.Method,
		Path:    in.Path,
		Headers: map[string][]string{},
		Query:   in.Query,
		Cookies: in.Cookies,
	}
	for k, v := range in.Headers {
		req.Headers[lowerHeader(k)] = v
	}
	switch {
	case len(in.BodyJSON) > 0:
		req.Body = in.BodyJSON
	case in.Body != "":
		req.Body = []byte(in.Body)
	}
	return req, nil
}

func lowerHeader(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// LoadDir reads every ".json" fixture under dir (recursively) and returns
// them sorted by tier then id.
func LoadDir(dirFS fs.FS, dir string) ([]Fixture, error) {
	var fixtures []Fixture
	err := fs.WalkDir(dirFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := fs.ReadFile(dirFS, path)
		if err != nil {
			return err
		}
		var f Fixture
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("harness: %s: %w", path, err)
		}
		fixtures = append(fixtures, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].Tier != fixtures[j].Tier {
			return fixtures[i].Tier < fixtures[j].Tier
		}
		return fixtures[i].ID < fixtures[j].ID
	})
	return fixtures, nil
}

// Mismatch describes one field disagreement between an actual response and
// a fixture's expectation.
type Mismatch struct {
	Field    string
	Expected any
	Actual   any
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %v, got %v", m.Field, m.Expected, m.Actual)
}

// Run serves the fixture's input through app and compares the canonical
// response against Expect, returning every field that disagrees.
func Run(app *apptheory.App, f Fixture) ([]Mismatch, error) {
	req, err := f.Input.ToRequest()
	if err != nil {
		return nil, err
	}
	resp := app.Serve(req)
	return Compare(f.Expect, resp), nil
}

// Compare diffs a canonical.Response against a fixture's expectation.
func Compare(expect FixtureExpect, resp *canonical.Response) []Mismatch {
	var mismatches []Mismatch

	if resp.Status != expect.Status {
		mismatches = append(mismatches, Mismatch{"status", expect.Status, resp.Status})
	}
	for k, v := range expect.Headers {
		got := resp.Headers[lowerHeader(k)]
		if !equalStrings(got, v) {
			mismatches = append(mismatches, Mismatch{"headers." + k, v, got})
		}
	}
	for k, v := range expect.Cookies {
		got, ok := resp.Cookies[k]
		if !ok || got != v {
			mismatches = append(mismatches, Mismatch{"cookies." + k, v, got})
		}
	}
	if expect.IsBase64 != resp.IsBase64 {
		mismatches = append(mismatches, Mismatch{"is_base64", expect.IsBase64, resp.IsBase64})
	}

	switch {
	case len(expect.BodyJSON) > 0:
		if !jsonEqual(expect.BodyJSON, resp.Body) {
			mismatches = append(mismatches, Mismatch{"body_json", string(expect.BodyJSON), string(resp.Body)})
		}
	case expect.Body != "":
		if expect.Body != string(resp.Body) {
			mismatches = append(mismatches, Mismatch{"body", expect.Body, string(resp.Body)})
		}
	}

	return mismatches
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func jsonEqual(expected, actual []byte) bool {
	var e, a any
	if err := json.Unmarshal(expected, &e); err != nil {
		return false
	}
	if err := json.Unmarshal(actual, &a); err != nil {
		return false
	}
	eb, _ := json.Marshal(e)
	ab, _ := json.Marshal(a)
	return bytes.Equal(eb, ab)
}
