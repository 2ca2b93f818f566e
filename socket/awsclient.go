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
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
)

// awsClient wraps the real API Gateway Management API client.
type awsClient struct {
	api *apigatewaymanagementapi.Client
}

// PostToConnection implements ManagementClient against the live API.
func (c *awsClient) PostToConnection(ctx context.Context, connectionID string, data []byte) error {
	_, err := c.api.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	return err
}

// AWSClientFactory returns the production ClientFactory: for a given
// management endpoint (https://<domain>/<stage>), it builds an
// apigatewaymanagementapi.Client whose base URL is overridden to that
// endpoint, since each API Gateway stage is its own management host (spec
// §4.I).
func AWSClientFactory(ctx context.Context) (ClientFactory, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return func(endpoint string) (ManagementClient, error) {
		api := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		})
		return &awsClient{api: api}, nil
	}, nil
}
