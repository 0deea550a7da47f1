// Copyright 2022, 2026 Harald Albrecht.
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

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
)

// Stage identifies the step of the SSR pipeline that failed.
type Stage string

const (
	StageTemplate  Stage = "template"  // reading the index.html template.
	StageTransform Stage = "transform" // running the HTML transform pipeline.
	StageRender    Stage = "render"    // resolving or calling the render function.
)

// RequestError is the single class of failure an SSR request can end in. Its
// message is exactly the message of the wrapped error, as this is what gets
// sent to the client.
type RequestError struct {
	Stage Stage
	Err   error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// NormalizedHttpError writes a normalized HTTP error message and HTTP status
// code based on the specified error, but not leaking any interesting internal
// server details from this specified error. It is used for the static asset
// layer only.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, fs.ErrPermission) {
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}
	http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
}

// RenderHttpError writes a 500 status with the plain error message as its
// body. Unlike http.Error it doesn't append a newline, so the body is exactly
// the error message.
func RenderHttpError(w http.ResponseWriter, err error) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, err.Error())
}
