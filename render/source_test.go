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
package render

import (
	"context"
	"errors"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("render sources", func() {

	ctx := context.Background()

	It("hands out a plain render function", func() {
		boom := errors.New("boom")
		src := FuncSource(func(context.Context, string, Manifest) (*Result, error) {
			return nil, boom
		})
		render := Successful(src.Load(ctx))
		Expect(render(ctx, "/", nil)).Error().To(MatchError(boom))
	})

	When("static", func() {

		It("loads the bundle only once", func() {
			fsys := bundleFS(entryYAML)
			src := Successful(NewStaticSource(fsys))
			fsys["home.html"] = &fstest.MapFile{Data: []byte("<h1>Changed</h1>")}
			delete(fsys, EntryName)
			render := Successful(src.Load(ctx))
			Expect(render(ctx, "/", nil)).To(HaveField("Markup", "<h1>Home home</h1>"))
		})

		It("fails on broken bundles", func() {
			Expect(NewStaticSource(fstest.MapFS{})).Error().To(HaveOccurred())
		})

	})

	When("live", func() {

		It("picks up changes with the next load", func() {
			fsys := bundleFS(entryYAML)
			src := NewLiveSource(fsys)
			render := Successful(src.Load(ctx))
			Expect(render(ctx, "/", nil)).To(HaveField("Markup", "<h1>Home home</h1>"))

			fsys["home.html"] = &fstest.MapFile{Data: []byte("<h1>Changed</h1>")}
			render = Successful(src.Load(ctx))
			Expect(render(ctx, "/", nil)).To(HaveField("Markup", "<h1>Changed</h1>"))
		})

		It("reports broken bundles on load", func() {
			fsys := bundleFS(entryYAML)
			src := NewLiveSource(fsys)
			delete(fsys, "home.html")
			Expect(src.Load(ctx)).Error().To(MatchError(ContainSubstring("home.html")))
		})

		It("doesn't load for cancelled requests", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			Expect(NewLiveSource(bundleFS(entryYAML)).Load(cctx)).Error().
				To(MatchError(context.Canceled))
		})

	})

})
