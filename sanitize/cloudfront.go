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

package sanitize

import "strings"

// ManagementEndpoint builds the base URL a socket connection's management
// client posts to, from the domain name and stage a socket event carries
//. When domainName already looks like a Cloudfront-fronted
// custom domain (no ".execute-api." component), stage is omitted — a
// custom domain maps a stage to "/", the way a CDN distribution in front
// of an API Gateway custom domain does.
func ManagementEndpoint(domainName, stage string) string {
	domainName = strings.TrimSpace(domainName)
	stage = strings.TrimSpace(stage)
	if domainName == "" {
		return ""
	}
	if stage == "" || !strings.Contains(domainName, ".execute-api.") {
		return "https://" + domainName
	}
	return "https://" + domainName + "/" + stage
}
