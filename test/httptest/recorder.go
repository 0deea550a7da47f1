// Copyright 2023, 2026 Harald Albrecht.
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

/*
Package httptest wraps the standard library's httptest.ResponseRecorder in order
to fail any test doing superfluous response.WriteHeader calls, as well as
changing headers after they've already been sent.
*/
package httptest

import (
	"net/http"
	stdhttptest "net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Recorder wraps httptest.ResponseRecorder in order to fail tests doing
// superfluous WriteHeader calls or setting headers too late.
type Recorder struct {
	*stdhttptest.ResponseRecorder
	wroteHeader bool
	sentHeader  http.Header // snapshot of the headers at WriteHeader time.
}

// NewRecorder returns a new test response recorder detecting superfluous
// WriteHeader calls.
func NewRecorder() *Recorder {
	return &Recorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
	}
}

// WriteHeader implements http.ResponseWriter, failing tests that do superfluous
// WriteHeader calls.
func (w *Recorder) WriteHeader(code int) {
	GinkgoHelper()
	Expect(w.wroteHeader).To(BeFalse(), "superfluous response.WriteHeader call")
	w.wroteHeader = true
	w.sentHeader = w.Header().Clone()
	w.ResponseRecorder.WriteHeader(code)
}

// Write implements http.ResponseWriter, implicitly writing the header with
// status 200 if not done yet.
func (w *Recorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseRecorder.Write(b)
}

// WriteString implements io.StringWriter.
func (w *Recorder) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// StatusCode returns the recorded status code.
func (w *Recorder) StatusCode() int {
	return w.Result().StatusCode
}

// ContentType returns the Content-Type header as it was sent.
func (w *Recorder) ContentType() string {
	GinkgoHelper()
	Expect(w.wroteHeader).To(BeTrue(), "response header not yet written")
	return w.sentHeader.Get("Content-Type")
}

// Text returns the recorded body as a string.
func (w *Recorder) Text() string {
	return w.Body.String()
}
