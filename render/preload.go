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
	"html"
	"path"
	"strings"
)

// PreloadLinks returns the <link> elements for preloading the assets the
// manifest lists for the specified modules. Each asset is linked only once, in
// the order first seen. Assets with unknown file extensions are skipped.
func PreloadLinks(modules []string, manifest Manifest) string {
	if len(manifest) == 0 {
		return ""
	}
	var links strings.Builder
	seen := map[string]struct{}{}
	for _, module := range modules {
		for _, asset := range manifest[module] {
			if _, ok := seen[asset]; ok {
				continue
			}
			seen[asset] = struct{}{}
			links.WriteString(preloadLink(asset))
		}
	}
	return links.String()
}

// preloadLink returns the <link> element for a single asset, or "" if there
// is no sensible way to preload it.
func preloadLink(asset string) string {
	href := html.EscapeString(asset)
	switch strings.ToLower(path.Ext(asset)) {
	case ".js":
		return `<link rel="modulepreload" crossorigin href="` + href + `">`
	case ".css":
		return `<link rel="stylesheet" href="` + href + `">`
	case ".woff":
		return `<link rel="preload" href="` + href + `" as="font" type="font/woff" crossorigin>`
	case ".woff2":
		return `<link rel="preload" href="` + href + `" as="font" type="font/woff2" crossorigin>`
	case ".gif":
		return `<link rel="preload" href="` + href + `" as="image" type="image/gif">`
	case ".jpg", ".jpeg":
		return `<link rel="preload" href="` + href + `" as="image" type="image/jpeg">`
	case ".png":
		return `<link rel="preload" href="` + href + `" as="image" type="image/png">`
	}
	return ""
}
