// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ssrserve

// ModeEnvVar names the environment variable selecting the Mode at process
// start.
const ModeEnvVar = "SERVER_RENDER_MODE"

// Mode is either Production or Development. It gets decided once when the
// process starts and never changes afterwards.
type Mode int

const (
	Development Mode = iota // live bundle resolution, source root index.html.
	Production              // prebuilt bundle, build output index.html.
)

// ParseMode returns Production only for the exact value "production". An
// empty or any other value, including "Production", selects Development.
func ParseMode(s string) Mode {
	if s == "production" {
		return Production
	}
	return Development
}

// String returns the textual representation as understood by ParseMode.
func (m Mode) String() string {
	if m == Production {
		return "production"
	}
	return "development"
}
