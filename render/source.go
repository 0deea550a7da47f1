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
	"context"
	"io/fs"
)

// Result is what a render function produces for a single request.
type Result struct {
	Markup       string   // replaces the outlet placeholder in the index template.
	PreloadLinks string   // <link> elements for the assets of the used modules.
	Modules      []string // identifiers of the modules used for rendering.
}

// Func renders the application for the given request URL. The URL is the
// request's path and query exactly as received. The manifest is empty in
// development.
type Func func(ctx context.Context, url string, manifest Manifest) (*Result, error)

// Source hands out render functions.
type Source interface {
	Load(ctx context.Context) (Func, error)
}

// FuncSource always hands out the very same render function.
type FuncSource Func

// Load returns the render function itself.
func (s FuncSource) Load(context.Context) (Func, error) { return Func(s), nil }

// StaticSource is a Source whose render function was loaded once from a
// (prebuilt) server bundle.
type StaticSource struct {
	render Func
}

var _ Source = (*StaticSource)(nil)

// NewStaticSource loads the server bundle from fsys right now and then keeps
// handing out the same render function.
func NewStaticSource(fsys fs.FS, opts ...BundleOption) (*StaticSource, error) {
	render, err := LoadBundle(fsys, opts...)
	if err != nil {
		return nil, err
	}
	return &StaticSource{render: render}, nil
}

// Load returns the render function loaded when creating this StaticSource.
func (s *StaticSource) Load(context.Context) (Func, error) {
	return s.render, nil
}

// LiveSource is a Source that re-resolves the server bundle each time it gets
// asked for the render function. Nothing is cached, so a bundle that got
// broken and then fixed again recovers without restarting.
type LiveSource struct {
	fsys fs.FS
	opts []BundleOption
}

var _ Source = (*LiveSource)(nil)

// NewLiveSource returns a LiveSource resolving the server bundle from fsys.
func NewLiveSource(fsys fs.FS, opts ...BundleOption) *LiveSource {
	return &LiveSource{
		fsys: fsys,
		opts: opts,
	}
}

// Load resolves the server bundle afresh.
func (s *LiveSource) Load(ctx context.Context) (Func, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadBundle(s.fsys, append([]BundleOption{WithDebug()}, s.opts...)...)
}
