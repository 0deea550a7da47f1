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
	"fmt"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/flosch/pongo2/v6"
	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// EntryName is the name of the route table inside a server bundle.
const EntryName = "entry-server.yaml"

// entry describes a server bundle, as stored in its EntryName file.
type entry struct {
	Modules  []string     `yaml:"modules"`  // used by every page.
	NotFound string       `yaml:"notFound"` // optional page for unmatched URLs.
	Routes   []entryRoute `yaml:"routes"`
}

type entryRoute struct {
	Name    string   `yaml:"name"`
	Path    string   `yaml:"path"` // gorilla/mux path template.
	Page    string   `yaml:"page"` // page template inside the bundle.
	Modules []string `yaml:"modules"`
}

// BundleOption configures loading a server bundle.
type BundleOption func(*bundleConfig)

type bundleConfig struct {
	entry string
	debug bool
}

// WithEntry sets the name of the route table file to something other than
// EntryName.
func WithEntry(name string) BundleOption {
	return func(c *bundleConfig) {
		c.entry = name
	}
}

// WithDebug switches the template set into debug mode.
func WithDebug() BundleOption {
	return func(c *bundleConfig) {
		c.debug = true
	}
}

type page struct {
	route   string
	tpl     *pongo2.Template
	modules []string
}

// bundle is a loaded server bundle; it is never modified after loading, so
// its render method can be called concurrently.
type bundle struct {
	router   *mux.Router
	pages    map[*mux.Route]*page
	notFound *page
	modules  []string
}

// LoadBundle loads the server bundle found in fsys, compiling all its page
// templates, and returns its render function.
func LoadBundle(fsys fs.FS, opts ...BundleOption) (Func, error) {
	cfg := bundleConfig{entry: EntryName}
	for _, opt := range opts {
		opt(&cfg)
	}
	data, err := fs.ReadFile(fsys, cfg.entry)
	if err != nil {
		return nil, fmt.Errorf("cannot load server bundle: %w", err)
	}
	var e entry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("malformed server bundle entry %s: %w", cfg.entry, err)
	}

	set := pongo2.NewSet("ssr", pongo2.NewFSLoader(fsys))
	set.Debug = cfg.debug
	compiled := map[string]*pongo2.Template{}
	compile := func(name string) (*pongo2.Template, error) {
		if tpl, ok := compiled[name]; ok {
			return tpl, nil
		}
		tpl, err := set.FromFile(name)
		if err != nil {
			return nil, fmt.Errorf("cannot compile page %s: %w", name, err)
		}
		compiled[name] = tpl
		return tpl, nil
	}

	b := &bundle{
		router:  mux.NewRouter(),
		pages:   map[*mux.Route]*page{},
		modules: e.Modules,
	}
	for idx, r := range e.Routes {
		if r.Page == "" {
			return nil, fmt.Errorf("route #%d %q without page", idx, r.Path)
		}
		tpl, err := compile(r.Page)
		if err != nil {
			return nil, err
		}
		route := b.router.NewRoute().Path(r.Path)
		if r.Name != "" {
			route = route.Name(r.Name)
		}
		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("invalid route #%d %q: %w", idx, r.Path, err)
		}
		b.pages[route] = &page{route: r.Name, tpl: tpl, modules: r.Modules}
	}
	if e.NotFound != "" {
		tpl, err := compile(e.NotFound)
		if err != nil {
			return nil, err
		}
		b.notFound = &page{tpl: tpl}
	}
	return b.render, nil
}

// render renders the page matching the path of rawurl. The manifest, if
// non-empty, supplies the preload links for the modules used.
func (b *bundle) render(ctx context.Context, rawurl string, manifest Manifest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	var match mux.RouteMatch
	p := b.notFound
	vars := map[string]string{}
	if b.router.Match(&http.Request{Method: http.MethodGet, URL: u}, &match) {
		if matched, ok := b.pages[match.Route]; ok {
			p = matched
			vars = match.Vars
		}
	}
	if p == nil {
		return nil, fmt.Errorf("no route matches %s", u.Path)
	}
	markup, err := p.tpl.Execute(pongo2.Context{
		"url":    rawurl,
		"path":   u.Path,
		"query":  u.Query(),
		"params": vars,
		"route":  p.route,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot render %s: %w", u.Path, err)
	}
	modules := make([]string, 0, len(b.modules)+len(p.modules))
	modules = append(modules, b.modules...)
	modules = append(modules, p.modules...)
	return &Result{
		Markup:       markup,
		PreloadLinks: PreloadLinks(modules, manifest),
		Modules:      modules,
	}, nil
}
