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

import "strings"

// OutletPlaceholder marks where the rendered markup goes into the index
// template.
const OutletPlaceholder = "<!--ssr-outlet-->"

// PreloadLinksPlaceholder optionally marks where the preload links for the
// rendered modules go, typically inside <head>.
const PreloadLinksPlaceholder = "<!--preload-links-->"

// substitute replaces only the first occurrence of placeholder in doc with
// content, reporting whether the placeholder was found at all. Any further
// occurrences stay as they are.
func substitute(doc, placeholder, content string) (string, bool) {
	idx := strings.Index(doc, placeholder)
	if idx < 0 {
		return doc, false
	}
	return doc[:idx] + content + doc[idx+len(placeholder):], true
}
