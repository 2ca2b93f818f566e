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

package canonical

import "strings"

// QueueNameFromARN extracts the queue name from an SQS ARN
// ("arn:aws:sqs:region:account:name").
func QueueNameFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	return parts[len(parts)-1]
}

// TableNameFromStreamARN extracts the table name from a DynamoDB stream ARN
// ("arn:aws:dynamodb:region:account:table/NAME/stream/TIMESTAMP").
func TableNameFromStreamARN(arn string) string {
	const marker = "table/"
	idx := strings.Index(arn, marker)
	if idx < 0 {
		return ""
	}
	rest := arn[idx+len(marker):]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		return rest[:slash]
	}
	return rest
}

// StreamNameFromARN extracts the stream name from a Kinesis ARN
// ("arn:aws:kinesis:region:account:stream/NAME").
func StreamNameFromARN(arn string) string {
	const marker = "stream/"
	idx := strings.Index(arn, marker)
	if idx < 0 {
		return ""
	}
	return arn[idx+len(marker):]
}

// TopicNameFromARN extracts the topic name from an SNS ARN
// ("arn:aws:sns:region:account:name").
func TopicNameFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	return parts[len(parts)-1]
}

// RuleNameFromARN extracts the rule name from an EventBridge rule ARN
// listed in an event's `resources` ("...:rule/NAME").
func RuleNameFromARN(arn string) string {
	const marker = "rule/"
	idx := strings.Index(arn, marker)
	if idx < 0 {
		return ""
	}
	return arn[idx+len(marker):]
}
