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

package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

// ManifestName is the SSR manifest's name inside the client build output.
const ManifestName = "ssr-manifest.json"

// ErrManifest is wrapped by all errors returned from LoadManifest.
var ErrManifest = errors.New("cannot load SSR manifest")

// Manifest maps module identifiers to the static asset paths that need to be
// preloaded when a module has been used for rendering. It is read-only after
// loading.
type Manifest map[string][]string

// LoadManifest reads and decodes the SSR manifest name from fsys. A missing or
// malformed manifest is an error; callers loading the manifest at startup are
// expected to treat this as fatal.
func LoadManifest(fsys fs.FS, name string) (Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrManifest, name, err)
	}
	if m == nil {
		// "null" decodes without complaint, yet isn't a manifest.
		return nil, fmt.Errorf("%w %s: not a JSON object", ErrManifest, name)
	}
	return m, nil
}
