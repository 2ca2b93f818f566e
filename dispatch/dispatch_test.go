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

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/AppTheory/canonical"

	apptheory "github.com/theory-cloud/AppTheory"
)

func TestDetectQueue(t *testing.T) {
	raw := []byte(`{"Records":[{"eventSource":"aws:sqs","messageId":"m1","body":"hi","eventSourceARN":"arn:aws:sqs:us-east-1:1:orders"}]}`)
	src, err := Detect(raw)
	require.NoError(t, err)
	assert.Equal(t, SourceQueue, src)
}

func TestDetectRule(t *testing.T) {
	raw := []byte(`{"source":"aws.ec2","detail-type":"EC2 Instance State-change Notification","resources":["arn:aws:events:us-east-1:1:rule/cleanup"],"detail":{}}`)
	src, err := Detect(raw)
	require.NoError(t, err)
	assert.Equal(t, SourceRule, src)
}

func TestDetectSocket(t *testing.T) {
	raw := []byte(`{"requestContext":{"connectionId":"c1","routeKey":"$connect"}}`)
	src, err := Detect(raw)
	require.NoError(t, err)
	assert.Equal(t, SourceSocket, src)
}

func TestDetectLegacyProxy(t *testing.T) {
	raw := []byte(`{"requestContext":{"resourceId":"abc"},"httpMethod":"GET","path":"/x"}`)
	src, err := Detect(raw)
	require.NoError(t, err)
	assert.Equal(t, SourceLegacyProxy, src)
}

func TestDispatchQueueBatchReportsFailures(t *testing.T) {
	d := New()
	d.Queue("orders", func(ctx *apptheory.Context) (any, error) {
		if string(ctx.Req.Body) == "bad" {
			return nil, assertErr{}
		}
		return nil, nil
	})

	raw := []byte(`{"Records":[
		{"eventSource":"aws:sqs","messageId":"m1","body":"good","eventSourceARN":"arn:aws:sqs:us-east-1:1:orders"},
		{"eventSource":"aws:sqs","messageId":"m2","body":"bad","eventSourceARN":"arn:aws:sqs:us-east-1:1:orders"},
		{"eventSource":"aws:sqs","messageId":"m3","body":"x","eventSourceARN":"arn:aws:sqs:us-east-1:1:unregistered"}
	]}`)

	result, err := d.Dispatch(raw)
	require.NoError(t, err)
	resp := result.(*canonical.BatchResponse)
	require.Len(t, resp.BatchItemFailures, 2)
	assert.Equal(t, "m2", resp.BatchItemFailures[0].ItemIdentifier)
	assert.Equal(t, "m3", resp.BatchItemFailures[1].ItemIdentifier)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestDispatchPubSubUnmatchedRaises(t *testing.T) {
	d := New()
	raw := []byte(`{"Records":[{"EventSource":"aws:sns","Sns":{"TopicArn":"arn:aws:sns:us-east-1:1:alerts","Message":"hi"}}]}`)
	_, err := d.Dispatch(raw)
	assert.Error(t, err)
}

func TestDispatchRuleUnmatchedReturnsNil(t *testing.T) {
	d := New()
	raw := []byte(`{"source":"aws.ec2","detail-type":"EC2 Instance State-change Notification","detail":{}}`)
	result, err := d.Dispatch(raw)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDispatchRuleMatchedByName(t *testing.T) {
	d := New()
	called := false
	d.Rule("cleanup", func(ctx *apptheory.Context) (any, error) {
		called = true
		return "ran", nil
	})
	raw := []byte(`{"source":"aws.ec2","detail-type":"x","resources":["arn:aws:events:us-east-1:1:rule/cleanup"],"detail":{}}`)
	result, err := d.Dispatch(raw)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ran", result)
}

func TestDispatchHTTPV2ViaApp(t *testing.T) {
	app := apptheory.New()
	app.GET("/hello", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.Text(200, "world"), nil
	})

	d := New()
	d.HTTPApp = app

	raw := []byte(`{"version":"2.0","rawPath":"/hello","requestContext":{"http":{"method":"GET","path":"/hello"}},"headers":{}}`)
	result, err := d.Dispatch(raw)
	require.NoError(t, err)
	httpResp := result.(canonical.HTTPV2Response)
	assert.Equal(t, 200, httpResp.StatusCode)
	assert.Equal(t, "world", httpResp.Body)
}
