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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

const script = `<script type="module" src="/@ssr/client"></script>`

var _ = Describe("script injection", func() {

	inject := InjectScript("/@ssr/client")

	DescribeTable("injects at the right place",
		func(doc, expected string) {
			Expect(inject(context.Background(), "/", doc)).To(Equal(expected))
		},
		Entry("into head",
			"<html><head><title>t</title></head></html>",
			"<html><head>"+script+"<title>t</title></head></html>"),
		Entry("into head with attributes",
			"<HTML><HEAD profile=\"x\"><title>t</title></HEAD></HTML>",
			"<HTML><HEAD profile=\"x\">"+script+"<title>t</title></HEAD></HTML>"),
		Entry("not into header",
			"<html><body><header>h</header></body></html>",
			"<html>"+script+"<body><header>h</header></body></html>"),
		Entry("after html without head",
			"<!DOCTYPE html>\n<html lang=\"en\"><body></body></html>",
			"<!DOCTYPE html>\n<html lang=\"en\">"+script+"<body></body></html>"),
		Entry("in front of fragments",
			"<div id=app><!--ssr-outlet--></div>",
			script+"<div id=app><!--ssr-outlet--></div>"),
	)

	It("injects only once", func() {
		doc := Successful(inject(context.Background(), "/", "<html><head></head></html>"))
		Expect(inject(context.Background(), "/", doc)).To(Equal(doc))
	})

	It("escapes the script source", func() {
		Expect(InjectScript(`/a"b`)(context.Background(), "/", "")).To(
			Equal(`<script type="module" src="/a&#34;b"></script>`))
	})

})
