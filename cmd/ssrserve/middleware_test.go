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
package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("middleware", func() {

	var seenID string
	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = requestIDFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	BeforeEach(func() {
		seenID = ""
	})

	It("assigns new request ids", func() {
		w := httptest.NewRecorder()
		requestID(teapot).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		Expect(Successful(uuid.Parse(id)).String()).To(Equal(id))
		Expect(seenID).To(Equal(id))
	})

	It("reuses request ids from proxies", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		requestID(teapot).ServeHTTP(w, r)
		Expect(w.Header().Get(RequestIDHeader)).To(Equal("abc-123"))
		Expect(seenID).To(Equal("abc-123"))
	})

	It("has no request id outside requests", func() {
		Expect(requestIDFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())).To(BeEmpty())
	})

	It("logs requests with their status", func() {
		var buff bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buff, nil))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/foo?bar=baz", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		requestID(accessLog(log)(teapot)).ServeHTTP(w, r)
		Expect(w.Code).To(Equal(http.StatusTeapot))
		Expect(buff.String()).To(And(
			ContainSubstring("msg=request"),
			ContainSubstring("uri=\"/foo?bar=baz\""),
			ContainSubstring("status=418"),
			ContainSubstring("requestID=abc-123")))
	})

	It("logs implicit OKs", func() {
		var buff bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buff, nil))
		accessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(buff.String()).To(ContainSubstring("status=200"))
	})

	It("unwraps the response writer", func() {
		w := httptest.NewRecorder()
		rec := &statusRecorder{ResponseWriter: w}
		Expect(rec.Unwrap()).To(BeIdenticalTo(w))
		rec.Flush()
		Expect(w.Flushed).To(BeTrue())
	})

})

var _ = Describe("ssrserve command", func() {

	It("has flags for all configuration keys", func() {
		cmd := newRootCmd()
		for name, def := range map[string]string{
			"config":     "",
			"mode":       "development",
			"port":       "3000",
			"root":       ".",
			"build-dir":  "dist",
			"source-dir": "src",
			"assets-dir": "assets",
			"log-level":  "info",
			"log-format": "text",
		} {
			flag := cmd.Flags().Lookup(name)
			Expect(flag).NotTo(BeNil(), "missing flag %s", name)
			Expect(flag.DefValue).To(Equal(def))
		}
	})

	It("rejects arguments", func() {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"foo"})
		cmd.SetOut(GinkgoWriter)
		cmd.SetErr(GinkgoWriter)
		Expect(cmd.Execute()).NotTo(Succeed())
	})

	It("rejects invalid configuration before serving", func() {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--port", "0", "--root", GinkgoT().TempDir()})
		cmd.SetOut(GinkgoWriter)
		cmd.SetErr(GinkgoWriter)
		Expect(cmd.Execute()).To(MatchError(ContainSubstring("invalid port 0")))
	})

})
