// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.
package transform

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

func appending(s string) Transformer {
	return func(_ context.Context, url, html string) (string, error) {
		return html + s + "@" + url, nil
	}
}

var _ = Describe("transform chains", func() {

	ctx := context.Background()

	It("passes html unchanged through an empty chain", func() {
		const doc = "<html><body><!--ssr-outlet--></body></html>"
		Expect(New().TransformIndexHTML(ctx, "/", doc)).To(Equal(doc))
	})

	It("runs transformers in order", func() {
		c := New(
			WithTransformer(appending("A")),
			WithTransformer(nil),
			WithTransformer(appending("B")))
		Expect(c.TransformIndexHTML(ctx, "/x", "")).To(Equal("A@/xB@/x"))
	})

	It("stops at the first failing transformer", func() {
		boom := errors.New("boom")
		called := false
		c := New(
			WithTransformer(func(context.Context, string, string) (string, error) {
				return "", boom
			}),
			WithTransformer(func(_ context.Context, _, html string) (string, error) {
				called = true
				return html, nil
			}))
		Expect(c.TransformIndexHTML(ctx, "/", "<html>")).Error().To(MatchError(boom))
		Expect(called).To(BeFalse())
	})

	It("leaves errors alone without source remapping", func() {
		boom := errors.New("boom")
		Expect(New().FixStacktrace(boom)).To(BeIdenticalTo(boom))
		Expect(New().FixStacktrace(nil)).To(Succeed())
	})

	It("injects the client script", func() {
		c := New(WithTransformer(InjectScript("/@ssr/client")))
		doc := Successful(c.TransformIndexHTML(ctx, "/", "<html><head></head><body></body></html>"))
		Expect(doc).To(Equal(
			`<html><head><script type="module" src="/@ssr/client"></script></head><body></body></html>`))
	})

})
