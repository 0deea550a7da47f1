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

package transform

import (
	"context"
	"html"
	"regexp"
	"strings"
)

// headRe and htmlRe match the opening head and html elements respectively,
// with whatever attributes they might carry. We don't parse the document, as
// the template must survive untouched except for our injection.
var (
	headRe = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
	htmlRe = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
)

// InjectScript returns a Transformer injecting a module script element
// referencing src right at the beginning of the head element. Without a head
// element, the script goes directly after the html element, or else at the
// very beginning of the document. If the script element is already present,
// nothing gets injected a second time.
func InjectScript(src string) Transformer {
	script := `<script type="module" src="` + html.EscapeString(src) + `"></script>`
	return func(_ context.Context, _ string, doc string) (string, error) {
		if strings.Contains(doc, script) {
			return doc, nil
		}
		for _, re := range []*regexp.Regexp{headRe, htmlRe} {
			if loc := re.FindStringIndex(doc); loc != nil {
				return doc[:loc[1]] + script + doc[loc[1]:], nil
			}
		}
		return script + doc, nil
	}
}
