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

/*
Package transform provides the HTML transform capability of the SSR pipeline:
index templates pass through a chain of registered transformers before the
rendered markup gets spliced in. In development, the chain additionally
injects the live reload client and maps template errors back to their source
locations.
*/
package transform

import (
	"context"
	"io/fs"
)

// Pipeline transforms index templates and improves the diagnostics of errors
// that happened while serving a request.
type Pipeline interface {
	// TransformIndexHTML transforms the index template html for the request
	// URL url.
	TransformIndexHTML(ctx context.Context, url, html string) (string, error)
	// FixStacktrace returns err with its diagnostic information improved, if
	// possible, otherwise err unchanged.
	FixStacktrace(err error) error
}

// Transformer transforms (parts of) an index template.
type Transformer func(ctx context.Context, url, html string) (string, error)

// Chain is a Pipeline running its transformers in the order they were
// registered. A Chain without any transformers leaves index templates as they
// are.
type Chain struct {
	transformers []Transformer
	sourceFs     fs.FS  // nil unless remapping template errors.
	sourcePrefix string // prefix of source file names in remapped errors.
}

var _ Pipeline = (*Chain)(nil)

// Option configures a Chain when creating it.
type Option func(*Chain)

// New returns a new Chain configured by the specified options.
func New(opts ...Option) *Chain {
	c := &Chain{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTransformer registers a transformer, appending it to the end of the
// chain.
func WithTransformer(t Transformer) Option {
	return func(c *Chain) {
		if t != nil {
			c.transformers = append(c.transformers, t)
		}
	}
}

// WithSourceRemapping enables mapping template errors back to the template
// sources found in fsys, reporting their names with the specified prefix.
func WithSourceRemapping(fsys fs.FS, prefix string) Option {
	return func(c *Chain) {
		c.sourceFs = fsys
		c.sourcePrefix = prefix
	}
}

// TransformIndexHTML runs html through all registered transformers, stopping
// at the first transformer failing.
func (c *Chain) TransformIndexHTML(ctx context.Context, url, html string) (string, error) {
	var err error
	for _, t := range c.transformers {
		if html, err = t(ctx, url, html); err != nil {
			return "", err
		}
	}
	return html, nil
}

// FixStacktrace maps template errors to their source locations when source
// remapping has been enabled; any other error is returned unchanged.
func (c *Chain) FixStacktrace(err error) error {
	if c.sourceFs == nil || err == nil {
		return err
	}
	return remap(c.sourceFs, c.sourcePrefix, err)
}
