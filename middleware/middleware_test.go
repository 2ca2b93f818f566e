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

package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
)

func TestChainRunsInOrder(t *testing.T) {
	var trace []string
	mw := func(name string) HandlerFunc {
		return func(ctx any, next Next) (*canonical.Response, error) {
			trace = append(trace, "before:"+name)
			resp, err := next()
			trace = append(trace, "after:"+name)
			return resp, err
		}
	}
	terminal := func() (*canonical.Response, error) {
		trace = append(trace, "terminal")
		return &canonical.Response{Status: 200}, nil
	}

	resp, err := Chain(nil, []HandlerFunc{mw("a"), mw("b")}, terminal)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, []string{"before:a", "before:b", "terminal", "after:b", "after:a"}, trace)
}

func TestChainEmptyRunsTerminal(t *testing.T) {
	resp, err := Chain(nil, nil, func() (*canonical.Response, error) {
		return &canonical.Response{Status: 204}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)
}

func TestEventChainRunsInOrder(t *testing.T) {
	var trace []string
	mw := func(name string) EventHandlerFunc {
		return func(ctx any, next EventNext) error {
			trace = append(trace, "before:"+name)
			err := next()
			trace = append(trace, "after:"+name)
			return err
		}
	}
	err := EventChain(nil, []EventHandlerFunc{mw("a"), mw("b")}, func() error {
		trace = append(trace, "terminal")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"before:a", "before:b", "terminal", "after:b", "after:a"}, trace)
}

func TestEventChainPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := EventChain(nil, nil, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

type fakeBudgeter struct {
	tenant, op string
	remaining  int64
}

func (f fakeBudgeter) RemainingMS() int64    { return f.remaining }
func (f fakeBudgeter) TenantID() string      { return f.tenant }
func (f fakeBudgeter) OperationName() string { return f.op }

type fakeStdContextCarrier struct {
	fakeBudgeter
	std context.Context
}

func (f *fakeStdContextCarrier) StdContext() context.Context         { return f.std }
func (f *fakeStdContextCarrier) SetStdContext(ctx context.Context)   { f.std = ctx }

func TestTimeoutAllowsFastCallThrough(t *testing.T) {
	mw := NewTimeout(TimeoutOptions{Default: 50 * time.Millisecond})
	ctx := &fakeStdContextCarrier{std: context.Background()}

	resp, err := mw(ctx, func() (*canonical.Response, error) {
		return &canonical.Response{Status: 200}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestTimeoutRaisesOnSlowCall(t *testing.T) {
	mw := NewTimeout(TimeoutOptions{Default: 10 * time.Millisecond})
	ctx := &fakeStdContextCarrier{std: context.Background()}

	_, err := mw(ctx, func() (*canonical.Response, error) {
		time.Sleep(100 * time.Millisecond)
		return &canonical.Response{Status: 200}, nil
	})
	require.Error(t, err)
	var taxErr *apperr.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, apperr.Timeout, taxErr.Code)
}

func TestTimeoutZeroBudgetSkipsDeadline(t *testing.T) {
	mw := NewTimeout(TimeoutOptions{})
	ctx := &fakeStdContextCarrier{std: context.Background()}

	resp, err := mw(ctx, func() (*canonical.Response, error) {
		return &canonical.Response{Status: 200}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestTimeoutTenantOverrideWinsWhenTighter(t *testing.T) {
	mw := NewTimeout(TimeoutOptions{
		Default:         time.Second,
		TenantOverrides: map[string]time.Duration{"t1": 10 * time.Millisecond},
	})
	ctx := &fakeStdContextCarrier{fakeBudgeter: fakeBudgeter{tenant: "t1"}, std: context.Background()}

	_, err := mw(ctx, func() (*canonical.Response, error) {
		time.Sleep(100 * time.Millisecond)
		return &canonical.Response{Status: 200}, nil
	})
	require.Error(t, err)
}
